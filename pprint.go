package itemgraph

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

var printConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Fprint writes a readable dump of n's reverted mapping form to w.
func Fprint(w io.Writer, n Node) {
	printConfig.Fdump(w, n.ToDict(DictOpt{Revert: true}))
}
