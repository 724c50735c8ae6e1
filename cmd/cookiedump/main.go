// Copyright 2026 The cookievault Authors.
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

// Program cookiedump extracts cookies from locally-installed browsers and
// prints them to standard output.
//
// With no flags, it reads from every supported browser installed on the
// current machine. The -browser flag restricts extraction to a single
// channel; the -path flag instead decodes an arbitrary cookie-store file of
// unknown origin, as cookievault.AnyBrowser does.
//
// Examples
//
// Dump every cookie whose domain matches "example.com" from any installed
// browser:
//
//	cookiedump -domain example.com
//
// Dump Firefox's cookies only:
//
//	cookiedump -browser firefox
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cookievault/cookievault"
)

var (
	browser   = flag.String("browser", "", "Limit extraction to this browser (chrome, chromium, brave, edge, vivaldi, opera, operagx, octo, firefox, librewolf, safari, ie); empty means all")
	domainCSV = flag.String("domain", "", "Comma-separated list of domains to filter to; empty means all")
	path      = flag.String("path", "", "Decode an arbitrary cookie-store file instead of a known browser install")
	keyPath   = flag.String("key", "", "Sibling key file for -path (Local State for Chromium, key4.db for Firefox)")
	doVerbose = flag.Bool("v", false, "Print Secure/HTTPOnly/SameSite flags alongside each cookie")

	tw = tabwriter.NewWriter(os.Stdout, 4, 8, 1, ' ', 0)
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Extract cookies from locally-installed browsers and print them.

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
}

var browsers = map[string]func(...string) ([]cookievault.C, error){
	"chrome":    cookievault.Chrome,
	"chromium":  cookievault.Chromium,
	"brave":     cookievault.Brave,
	"edge":      cookievault.Edge,
	"vivaldi":   cookievault.Vivaldi,
	"opera":     cookievault.Opera,
	"operagx":   cookievault.OperaGX,
	"octo":      cookievault.Octo,
	"firefox":   cookievault.Firefox,
	"librewolf": cookievault.LibreWolf,
	"safari":    cookievault.Safari,
	"ie":        cookievault.InternetExplorer,
}

func main() {
	flag.Parse()

	var domains []string
	if *domainCSV != "" {
		domains = strings.Split(*domainCSV, ",")
	}

	var cookies []cookievault.C
	switch {
	case *path != "":
		got, err := cookievault.AnyBrowser(*path, domains, *keyPath)
		if err != nil {
			log.Fatalf("Decoding %q: %v", *path, err)
		}
		cookies = got
	case *browser != "":
		fn, ok := browsers[strings.ToLower(*browser)]
		if !ok {
			log.Fatalf("Unknown -browser %q", *browser)
		}
		got, err := fn(domains...)
		if err != nil {
			log.Fatalf("Reading %s: %v", *browser, err)
		}
		cookies = got
	default:
		cookies = cookievault.LoadAll(domains...)
	}

	sort.Slice(cookies, func(i, j int) bool {
		if cookies[i].Domain != cookies[j].Domain {
			return cookies[i].Domain < cookies[j].Domain
		}
		return cookies[i].Name < cookies[j].Name
	})

	for _, c := range cookies {
		fmt.Fprint(tw, formatRow(c))
	}
	tw.Flush()
	fmt.Fprintf(os.Stderr, ">> TOTAL %d cookies\n", len(cookies))
}

func formatRow(c cookievault.C) string {
	expires := "session"
	if c.HasExpires() {
		expires = c.Expires.Format("2006-01-02")
	}
	fields := []string{c.Domain, c.Path, c.Name, c.Value, expires}
	if *doVerbose {
		fields = append(fields, flagString(c), c.SameSite.String())
	}
	return strings.Join(fields, "\t") + "\n"
}

func flagString(c cookievault.C) string {
	var parts []string
	if c.Flags.Secure {
		parts = append(parts, "Secure")
	}
	if c.Flags.HTTPOnly {
		parts = append(parts, "HttpOnly")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "+")
}
