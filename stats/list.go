package stats

import (
	"fmt"
)

// List is an ordered collection of named outputs, the interface through which
// analyses hand their results to whatever stores or draws them.
type List struct {
	names []string
	objs  map[string]Object
}

// NewList returns an empty List.
func NewList() *List {
	return &List{objs: map[string]Object{}}
}

// Add appends objects to the list. Names must be unique.
func (l *List) Add(objs ...Object) {
	for _, obj := range objs {
		if _, ok := l.objs[obj.Name()]; ok {
			panic(fmt.Sprintf("Output '%s' added to List twice.", obj.Name()))
		}
		l.names = append(l.names, obj.Name())
		l.objs[obj.Name()] = obj
	}
}

// Names returns the names of every object in the order they were added.
func (l *List) Names() []string { return append([]string{}, l.names...) }

// Len returns the number of objects in the list.
func (l *List) Len() int { return len(l.names) }

// Get returns the object with the given name.
func (l *List) Get(name string) (Object, bool) {
	obj, ok := l.objs[name]
	return obj, ok
}

// Profile returns the Profile with the given name, or nil.
func (l *List) Profile(name string) *Profile {
	p, _ := l.objs[name].(*Profile)
	return p
}

// Profile2D returns the Profile2D with the given name, or nil.
func (l *List) Profile2D(name string) *Profile2D {
	p, _ := l.objs[name].(*Profile2D)
	return p
}

// Hist returns the Hist with the given name, or nil.
func (l *List) Hist(name string) *Hist {
	h, _ := l.objs[name].(*Hist)
	return h
}

// Extend appends every object of o, which must not share names with l.
func (l *List) Extend(o *List) {
	for _, name := range o.names {
		l.Add(o.objs[name])
	}
}

// Merge adds the contents of every object in o to the object of the same name
// in l. Both lists must hold the same objects.
func (l *List) Merge(o *List) {
	if len(l.names) != len(o.names) {
		panic(fmt.Sprintf(
			"Internal inconsistency: merging lists of length %d and %d.",
			len(l.names), len(o.names),
		))
	}

	for _, name := range l.names {
		switch obj := l.objs[name].(type) {
		case *Profile:
			obj.Merge(mustGet[*Profile](o, name))
		case *Profile2D:
			obj.Merge(mustGet[*Profile2D](o, name))
		case *Hist:
			obj.Merge(mustGet[*Hist](o, name))
		default:
			panic(fmt.Sprintf("Cannot merge output '%s' of kind %s.",
				name, obj.Kind()))
		}
	}
}

func mustGet[T Object](l *List, name string) T {
	obj, ok := l.objs[name].(T)
	if !ok {
		panic(fmt.Sprintf(
			"Internal inconsistency: output '%s' missing or of the wrong kind.",
			name,
		))
	}
	return obj
}
