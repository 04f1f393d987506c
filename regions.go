// Copyright (C) 2025 kayon <kayon.hu@gmail.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package become

import "github.com/kayon/become/scanner"

const (
	memPageSize = 1 << 12

	// a fault skips at most the rest of one chunk
	regionLargeSize = memPageSize << 9

	defRegionsCaps = 1 << 11
)

type Regions []Region

func (regions Regions) Size() (size uint64) {
	for _, region := range regions {
		size += region.Size()
	}
	return
}

// Candidates keeps the readable and writable regions, in order.
func (regions Regions) Candidates() Regions {
	candidates := make(Regions, 0, len(regions))
	for _, region := range regions {
		if region.Candidate() {
			candidates = append(candidates, region)
		}
	}
	return candidates
}

// ScanRanges converts the regions to scan ranges, splitting large regions
// into page aligned chunks.
func (regions Regions) ScanRanges() []scanner.Range {
	n := len(regions)
	if n == 0 {
		return nil
	}
	ranges := make([]scanner.Range, 0, n+(n>>3))
	for _, region := range regions {
		ranges = splitRange(ranges, region.Range(), regionLargeSize)
	}
	return ranges
}

func splitRange(ranges []scanner.Range, r scanner.Range, chunk uintptr) []scanner.Range {
	if r.Size() <= chunk {
		return append(ranges, r)
	}

	start := r.Start
	for start < r.End {
		end := start + chunk
		if end < r.End && end > start {
			// split on a page edge so no page is shared by two chunks
			end &^= memPageSize - 1
			if end <= start {
				end = start + memPageSize
			}
			if end > r.End {
				end = r.End
			}
		} else {
			end = r.End
		}
		ranges = append(ranges, scanner.Range{Start: start, End: end})
		start = end
	}
	return ranges
}
