// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// The notification log. seq is the rowid; autoincrement keeps it monotonic
// across restarts even though rows are never deleted.
const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	ts integer not null,
	name text not null,
	identity blob(20) not null,
	amount blob not null,
	cooldown integer not null
);

CREATE INDEX if not exists eventTimeIndex on event(ts);
CREATE INDEX if not exists eventNameIndex on event(name);
CREATE INDEX if not exists eventIdentityIndex on event(identity);
`
