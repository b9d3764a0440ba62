package seqdoc

import "slices"

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Raw = slices.Clone(d.Raw)
	if d.Pub != nil {
		p := *d.Pub
		p.Authors = slices.Clone(d.Pub.Authors)
		if d.Pub.Date != nil {
			dt := *d.Pub.Date
			p.Date = &dt
		}
		out.Pub = &p
	}
	if d.Source != nil {
		s := *d.Source
		s.Subtypes = slices.Clone(d.Source.Subtypes)
		out.Source = &s
	}
	if d.MolInfo != nil {
		m := *d.MolInfo
		out.MolInfo = &m
	}
	if d.GenBank != nil {
		g := *d.GenBank
		g.Keywords = slices.Clone(d.GenBank.Keywords)
		g.ExtraAccessions = slices.Clone(d.GenBank.ExtraAccessions)
		out.GenBank = &g
	}
	if d.EMBL != nil {
		e := *d.EMBL
		e.ExtraAcc = slices.Clone(d.EMBL.ExtraAcc)
		out.EMBL = &e
	}
	if d.User != nil {
		u := d.User.Clone()
		out.User = &u
	}
	if d.Date != nil {
		dt := *d.Date
		out.Date = &dt
	}
	return out
}

// Clone returns a deep copy of the user object.
func (u *UserObject) Clone() UserObject {
	out := UserObject{Type: u.Type}
	if len(u.Fields) > 0 {
		out.Fields = make([]UserField, len(u.Fields))
		for i, f := range u.Fields {
			out.Fields[i] = UserField{Label: f.Label, Value: f.Value, Values: slices.Clone(f.Values)}
		}
	}
	return out
}

// CloneDescrs deep-copies a descriptor list.
func CloneDescrs(ds []Descriptor) []Descriptor {
	if ds == nil {
		return nil
	}
	out := make([]Descriptor, len(ds))
	for i := range ds {
		out[i] = ds[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the subtree.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{}
	if d.Set != nil {
		s := &Set{
			Class:  d.Set.Class,
			Descrs: CloneDescrs(d.Set.Descrs),
			Annots: cloneAnnots(d.Set.Annots),
		}
		if d.Set.Children != nil {
			s.Children = make([]*Document, len(d.Set.Children))
			for i, c := range d.Set.Children {
				s.Children[i] = c.Clone()
			}
		}
		out.Set = s
	}
	if d.Seq != nil {
		q := &Sequence{
			IDs:    slices.Clone(d.Seq.IDs),
			Inst:   d.Seq.Inst,
			Descrs: CloneDescrs(d.Seq.Descrs),
			Annots: cloneAnnots(d.Seq.Annots),
		}
		if d.Seq.Hist != nil {
			q.Hist = &History{Replaces: slices.Clone(d.Seq.Hist.Replaces)}
		}
		out.Seq = q
	}
	return out
}

func cloneAnnots(as []Annot) []Annot {
	if as == nil {
		return nil
	}
	out := make([]Annot, len(as))
	for i, a := range as {
		out[i] = Annot{Name: a.Name, Data: slices.Clone(a.Data)}
	}
	return out
}
