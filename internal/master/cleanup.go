package master

import (
	"slices"
	"strings"

	"wgsmaster/internal/seqdoc"
)

// Cleaner is the record normalisation engine run on the finished master.
type Cleaner interface {
	Clean(doc *seqdoc.Document) (changed bool)
}

// CleanerFunc adapts a function to Cleaner.
type CleanerFunc func(doc *seqdoc.Document) bool

func (f CleanerFunc) Clean(doc *seqdoc.Document) bool { return f(doc) }

// BasicCleanup trims text descriptors, drops empty ones and removes exact
// duplicates of comments and user objects.
type BasicCleanup struct{}

func (BasicCleanup) Clean(doc *seqdoc.Document) bool {
	changed := false
	seqdoc.Walk(doc, func(node *seqdoc.Document, _ int) bool {
		descrs := node.Descrs()
		seen := make(map[string]struct{}, len(descrs))
		out := descrs[:0]
		for _, d := range descrs {
			switch d.Kind {
			case seqdoc.DescrTitle, seqdoc.DescrComment:
				if t := strings.TrimSpace(d.Text); t != d.Text {
					d.Text = t
					changed = true
				}
				if d.Text == "" {
					changed = true
					continue
				}
				key := d.Kind.String() + "\x00" + d.Text
				if _, dup := seen[key]; dup {
					changed = true
					continue
				}
				seen[key] = struct{}{}
			case seqdoc.DescrUser:
				if d.User == nil {
					changed = true
					continue
				}
				key := "user\x00" + d.User.Key()
				if _, dup := seen[key]; dup {
					changed = true
					continue
				}
				seen[key] = struct{}{}
			case seqdoc.DescrGenBank:
				if d.GenBank != nil {
					n := len(d.GenBank.Keywords)
					d.GenBank.Keywords = slices.DeleteFunc(d.GenBank.Keywords, func(kw string) bool {
						return strings.TrimSpace(kw) == ""
					})
					changed = changed || n != len(d.GenBank.Keywords)
				}
			default:
			}
			out = append(out, d)
		}
		if len(out) != len(descrs) {
			clear(descrs[len(out):])
		}
		node.SetDescrs(out)
		return true
	})
	return changed
}
