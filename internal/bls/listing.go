// Copyright 2026 the Labor Stats Pipeline authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bls

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// entryRe matches the text that precedes each link in the archive's directory
// listing, for example "3/12/2024  8:31 AM   16777". Directories show
// "<dir>" instead of a size.
var entryRe = regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+(\d{1,2}:\d{2}\s*(?:AM|PM))\s+(\d+|<dir>)\s*$`)

const listingTimeLayout = "1/2/2006 3:04 PM"

// ParseListing extracts the files from an HTML directory listing. Link
// targets are resolved against base. Entries without a date, time and size
// (such as the parent directory link) and directories are skipped. Timestamps
// carry no zone and are interpreted in loc, or UTC when loc is nil; an
// unparseable timestamp leaves LastModified zero.
func ParseListing(base string, b []byte, loc *time.Location) ([]*RemoteFile, error) {
	if loc == nil {
		loc = time.UTC
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url %q: %w", base, err)
	}

	var files []*RemoteFile
	seen := make(map[string]struct{})

	var (
		preceding strings.Builder
		inAnchor  bool
		href      string
		anchor    strings.Builder
	)

	z := html.NewTokenizer(bytes.NewReader(b))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to parse listing: %w", err)
			}
			return files, nil

		case html.TextToken:
			if inAnchor {
				anchor.Write(z.Text())
			} else {
				preceding.Write(z.Text())
			}

		case html.StartTagToken:
			tn, hasAttr := z.TagName()
			switch string(tn) {
			case "a":
				inAnchor = true
				href = ""
				anchor.Reset()
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if strings.EqualFold(string(k), "href") {
						href = string(v)
					}
				}
			case "br", "tr", "li", "p":
				preceding.Reset()
			}

		case html.SelfClosingTagToken:
			if tn, _ := z.TagName(); string(tn) == "br" {
				preceding.Reset()
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) != "a" || !inAnchor {
				continue
			}
			inAnchor = false

			f, ok := parseEntry(baseURL, loc, preceding.String(), href, anchor.String())
			preceding.Reset()
			if !ok {
				continue
			}
			if _, dup := seen[f.Name]; dup {
				continue
			}
			seen[f.Name] = struct{}{}
			files = append(files, f)
		}
	}
}

func parseEntry(baseURL *url.URL, loc *time.Location, preceding, href, text string) (*RemoteFile, bool) {
	if href == "" || href == "../" || href == "./" || strings.HasSuffix(href, "/") {
		return nil, false
	}

	m := entryRe.FindStringSubmatch(preceding)
	if m == nil {
		return nil, false
	}
	if strings.EqualFold(m[3], "<dir>") {
		return nil, false
	}

	size, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return nil, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	u := baseURL.ResolveReference(ref)

	name := strings.TrimSpace(text)
	if name == "" {
		name = path.Base(u.Path)
	}

	var modified time.Time
	stamp := strings.Join(strings.Fields(m[1]+" "+m[2]), " ")
	stamp = strings.ToUpper(stamp)
	if !strings.Contains(stamp, " AM") && !strings.Contains(stamp, " PM") {
		stamp = strings.Replace(stamp, "AM", " AM", 1)
		stamp = strings.Replace(stamp, "PM", " PM", 1)
	}
	if t, err := time.ParseInLocation(listingTimeLayout, stamp, loc); err == nil {
		modified = t.UTC()
	}

	return &RemoteFile{
		Name:         name,
		Size:         size,
		LastModified: modified,
		URL:          u.String(),
	}, true
}
