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

package bincookie

import (
	"io"
	"io/ioutil"
)

// Open opens a bincookie file and returns a Store containing its data.
func Open(path string) (*Store, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return &Store{
		path: path,
		file: f,
	}, nil
}

// A Store holds the parsed contents of a .binarycookies file, as read by
// Open. ReadRows uses it to flatten the file into RawCookieRow values.
type Store struct {
	path string
	file *File
}

// WriteTo encodes the file associated with s in binary format to w.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	return s.file.WriteTo(w)
}
