// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import "github.com/teradata-labs/loom-assistant/internal/csync"

// liveMap is the Manager's registry of currently open sessions, keyed by
// session id.
type liveMap struct {
	m *csync.Map[string, *LiveSession]
}

func newLiveMap() *liveMap {
	return &liveMap{m: csync.NewMap[string, *LiveSession]()}
}

func (l *liveMap) get(id string) (*LiveSession, bool) {
	return l.m.Get(id)
}

func (l *liveMap) set(id string, ls *LiveSession) {
	l.m.Set(id, ls)
}

func (l *liveMap) delete(id string) {
	l.m.Delete(id)
}

// ids returns a snapshot of currently open session ids.
func (l *liveMap) ids() []string {
	var out []string
	for k := range l.m.Seq2() {
		out = append(out, k)
	}
	return out
}
