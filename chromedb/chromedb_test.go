// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chromedb_test

import (
	"flag"
	"testing"

	"github.com/cookievault/cookievault/chromedb"

	_ "modernc.org/sqlite"
)

var inputFile = flag.String("input", "", "Input Chrome cookie database")

func TestManualReadRows(t *testing.T) {
	if *inputFile == "" {
		t.Skip("Skipping test since no -input is specified")
	}
	rows, err := chromedb.ReadRows(*inputFile)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	t.Logf("Read %d raw rows", len(rows))
	for _, r := range rows {
		if r.ValuePlain == "" && len(r.ValueEncrypted) == 0 {
			t.Errorf("row %q/%q has neither plain nor encrypted value", r.Host, r.Name)
		}
	}
}
