// Copyright 2023 Michael J. Fromberger. All Rights Reserved.
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

package firefox

import (
	"flag"
	"testing"

	_ "modernc.org/sqlite"
)

var inputFile = flag.String("input", "", "Input Firefox cookies.sqlite database")

func TestManualReadRows(t *testing.T) {
	if *inputFile == "" {
		t.Skip("Skipping test since no -input is specified")
	}
	rows, err := ReadRows(*inputFile)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	t.Logf("Read %d rows", len(rows))
}
