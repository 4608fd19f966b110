package schema

// ChangeType classifies a difference between two definitions.
type ChangeType string

const (
	ChangeTypeAddColumn      ChangeType = "ADD_COLUMN"
	ChangeTypeRemoveColumn   ChangeType = "REMOVE_COLUMN"
	ChangeTypeModifyType     ChangeType = "MODIFY_TYPE"
	ChangeTypeModifyNullable ChangeType = "MODIFY_NULLABLE"
	ChangeTypeModifyUnique   ChangeType = "MODIFY_UNIQUE"
	ChangeTypeModifySize     ChangeType = "MODIFY_SIZE"
)

// Change is one column difference.
type Change struct {
	Type   ChangeType `json:"type" yaml:"type"`
	Column string     `json:"column" yaml:"column"`
	Old    *ColumnDef `json:"old,omitempty" yaml:"old,omitempty"`
	New    *ColumnDef `json:"new,omitempty" yaml:"new,omitempty"`
}

// Breaking reports whether data valid under the old definition may be
// rejected by the new one.
func (c Change) Breaking() bool {
	switch c.Type {
	case ChangeTypeAddColumn:
		return !c.New.IsNullable() && c.New.Default == nil
	case ChangeTypeRemoveColumn:
		return false
	case ChangeTypeModifyType:
		return c.New.Type != TypeAny
	case ChangeTypeModifyNullable:
		return !c.New.IsNullable()
	case ChangeTypeModifyUnique:
		return c.New.Unique
	case ChangeTypeModifySize:
		return c.New.Size > 0 && (c.Old.Size == 0 || c.New.Size < c.Old.Size)
	}
	return true
}

// Diff lists the column changes from old to new, in the column order of
// old followed by columns only new defines.
func Diff(old, new *Definition) []Change {
	var changes []Change

	for i := range old.Columns {
		o := old.Columns[i]
		n, ok := new.Column(o.Name)
		if !ok {
			changes = append(changes, Change{Type: ChangeTypeRemoveColumn, Column: o.Name, Old: &o})
			continue
		}
		changes = append(changes, modifications(o, n)...)
	}

	for i := range new.Columns {
		n := new.Columns[i]
		if _, ok := old.Column(n.Name); !ok {
			changes = append(changes, Change{Type: ChangeTypeAddColumn, Column: n.Name, New: &n})
		}
	}
	return changes
}

func modifications(o, n ColumnDef) []Change {
	var changes []Change
	add := func(t ChangeType) {
		oc, nc := o, n
		changes = append(changes, Change{Type: t, Column: o.Name, Old: &oc, New: &nc})
	}

	if o.Type != n.Type {
		add(ChangeTypeModifyType)
	}
	if o.IsNullable() != n.IsNullable() {
		add(ChangeTypeModifyNullable)
	}
	if o.Unique != n.Unique {
		add(ChangeTypeModifyUnique)
	}
	if o.Size != n.Size {
		add(ChangeTypeModifySize)
	}
	return changes
}

// Compatible reports whether every change from old to new is non-breaking.
func Compatible(old, new *Definition) bool {
	for _, c := range Diff(old, new) {
		if c.Breaking() {
			return false
		}
	}
	return true
}
