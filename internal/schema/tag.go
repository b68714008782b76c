package schema

import (
	"strconv"
	"strings"
)

// tagName is the struct tag key that marks a field as a column.
const tagName = "orm"

// columnTag is the parsed form of an orm struct tag.
type columnTag struct {
	name     string
	declType string
	pk       bool
	nullable bool
	def      *string
	length   int
	omit     bool
}

// parseTag supports: "-", "NAME", "NAME,pk", ",type=int", "NAME,null",
// "NAME,default=0", "NAME,length=64" and any combination of the options.
// A default may contain commas: it extends over the following segments up
// to the next one that starts a known option, so "default=a,b,pk" is the
// default "a,b" plus pk. Unknown options are ignored.
func parseTag(tag string) columnTag {
	if tag == "-" {
		return columnTag{omit: true}
	}
	var ct columnTag
	parts := strings.Split(tag, ",")
	ct.name = strings.TrimSpace(parts[0])

	opts := parts[1:]
	for i := 0; i < len(opts); i++ {
		key, val, hasVal := strings.Cut(opts[i], "=")
		switch strings.TrimSpace(key) {
		case "pk", "primarykey":
			ct.pk = true
		case "null", "nullable":
			ct.nullable = true
		case "type":
			ct.declType = strings.TrimSpace(val)
		case "default":
			for i+1 < len(opts) && !isTagOption(opts[i+1]) {
				i++
				val += "," + opts[i]
			}
			if hasVal {
				d := val
				ct.def = &d
			}
		case "length", "size":
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n > 0 {
				ct.length = n
			}
		}
	}
	return ct
}

// isTagOption reports whether a tag segment starts a known option.
func isTagOption(seg string) bool {
	key, _, _ := strings.Cut(seg, "=")
	switch strings.TrimSpace(key) {
	case "pk", "primarykey", "null", "nullable", "type", "default", "length", "size":
		return true
	}
	return false
}
