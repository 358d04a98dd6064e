package restdoc

// Base attribute names understood by Attr after tag keys and descriptions.
const (
	AttrName      = "name"
	AttrValid     = "isValid"
	AttrInherited = "isInherited"
	AttrError     = "error"
	AttrParent    = "parent"
	AttrLabels    = "labels"
)

// Attr looks an attribute up by name: a tag key that is present or has a
// registered handler yields its []Tag (empty when absent), "shortDescription"
// and "longDescription" yield the resolved string, base attributes yield
// their value. Anything else is an *UnknownAttributeError.
func (d *Doc) Attr(name string) (any, error) {
	if d.isTagKey(name) {
		return d.TagGroup(name), nil
	}

	switch kind := DescriptionKind(name); kind {
	case ShortDescription, LongDescription:
		return d.Description(kind), nil
	}

	switch name {
	case AttrName:
		return d.Name(), nil
	case AttrValid:
		return d.valid, nil
	case AttrInherited:
		return d.inherited, nil
	case AttrError:
		if d.err == nil {
			return "", nil
		}
		return d.err.Error(), nil
	case AttrParent:
		if p := d.Parent(); p != nil {
			return p, nil
		}
		return nil, nil
	case AttrLabels:
		return d.Labels(), nil
	}

	return nil, &UnknownAttributeError{Declaration: d.Name(), Attribute: name}
}

// HasAttr reports whether Attr would succeed for name. It never resolves
// descriptions or the parent.
func (d *Doc) HasAttr(name string) bool {
	if d.isTagKey(name) {
		return true
	}
	switch name {
	case string(ShortDescription), string(LongDescription),
		AttrName, AttrValid, AttrInherited, AttrError, AttrParent, AttrLabels:
		return true
	}
	return false
}

func (d *Doc) isTagKey(name string) bool {
	if _, ok := d.tags[name]; ok {
		return true
	}
	_, ok := d.opts.registry.Handler(TagPrefix + name)
	return ok
}
