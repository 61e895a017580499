/*
Package textfile loads indented outline text as a tree of entries, ready to
be shown by a flattree.Model.

Every non-blank line of an outline is an entry. An entry is nested below
the closest preceding entry with less indentation:

	Fruit
	    Apples
	        Cox
	    Pears
	Vegetables

The children of every entry are held in an observable flattree.List, so
edits of the outline are followed by a model incrementally.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'flattree'
func tracer() tracing.Trace {
	return tracing.Select("flattree")
}
