package memory

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type segment struct {
	base Address
	data []byte
}

func (s segment) end() Address {
	return s.base.Offset(int64(len(s.data)))
}

func (s segment) contains(addr Address) bool {
	return addr >= s.base && addr < s.end()
}

// Image is an address space made of byte segments mapped at fixed bases. It backs
// raw memory dumps loaded from disk and the synthetic heaps used in tests.
type Image struct {
	segments []segment
}

func NewImage() *Image {
	return &Image{}
}

// Map places data at base. Overlapping an existing segment is an error.
func (img *Image) Map(base Address, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty segment at %s", base)
	}
	end := base.Offset(int64(len(data)))
	if end < base {
		return fmt.Errorf("segment at %s wraps the address space", base)
	}

	seg := segment{base: base, data: data}
	for _, s := range img.segments {
		if base < s.end() && s.base < end {
			return fmt.Errorf("segment [%s, %s) overlaps [%s, %s)", base, end, s.base, s.end())
		}
	}

	img.segments = append(img.segments, seg)
	sort.Slice(img.segments, func(i, j int) bool {
		return img.segments[i].base < img.segments[j].base
	})
	return nil
}

// Size is the total number of mapped bytes.
func (img *Image) Size() uint64 {
	var n uint64
	for _, s := range img.segments {
		n += uint64(len(s.data))
	}
	return n
}

func (img *Image) find(addr Address) (segment, bool) {
	i := sort.Search(len(img.segments), func(i int) bool {
		return img.segments[i].end() > addr
	})
	if i < len(img.segments) && img.segments[i].contains(addr) {
		return img.segments[i], true
	}
	return segment{}, false
}

func (img *Image) ReadMemory(addr Address, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		cur := addr.Offset(int64(n))
		if cur < addr {
			return n, ErrUnmapped
		}
		seg, ok := img.find(cur)
		if !ok {
			return n, fmt.Errorf("%s: %w", cur, ErrUnmapped)
		}
		n += copy(buf[n:], seg.data[cur-seg.base:])
	}
	return n, nil
}

func (img *Image) IsReadable(addr Address, size uint64) bool {
	if size == 0 {
		_, ok := img.find(addr)
		return ok
	}

	last := addr.Offset(int64(size - 1))
	if last < addr {
		return false
	}
	for cur := addr; ; {
		seg, ok := img.find(cur)
		if !ok {
			return false
		}
		if seg.end() > last {
			return true
		}
		cur = seg.end()
	}
}

// LoadImage reads one or more raw dumps described as "path@0xBASE" and maps each
// file's contents at its base.
func LoadImage(specs ...string) (*Image, error) {
	img := NewImage()
	for _, spec := range specs {
		path, baseStr, found := strings.Cut(spec, "@")
		if !found {
			return nil, fmt.Errorf("invalid image '%s': expected path@0xBASE", spec)
		}

		base, err := ParseAddress(baseStr)
		if err != nil {
			return nil, fmt.Errorf("invalid image '%s': %w", spec, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}

		if err := img.Map(base, data); err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", path, err)
		}
	}
	return img, nil
}
