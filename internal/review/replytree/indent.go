package replytree

import (
	"fmt"
	"io"
	"strings"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

// Indent is the horizontal offset step per nesting level. Levels beyond
// MaxLevel render flush with MaxLevel; traversal itself is not limited.
type Indent struct {
	Step     int
	MaxLevel int
}

var (
	DesktopIndent = Indent{Step: 6, MaxLevel: 4}
	MobileIndent  = Indent{Step: 3, MaxLevel: 4}
)

func IndentFor(v model.Viewport) Indent {
	if v == model.ViewportMobile {
		return MobileIndent
	}
	return DesktopIndent
}

func (in Indent) At(depth int) int {
	if depth < 0 {
		depth = 0
	}
	if depth > in.MaxLevel {
		depth = in.MaxLevel
	}
	return depth * in.Step
}

// Render writes one line per visible reply, indented by depth.
func Render(w io.Writer, f *Forest, indent Indent) error {
	var err error
	f.Walk(func(r model.Reply, depth int) bool {
		if err != nil {
			return false
		}
		pad := strings.Repeat(" ", indent.At(depth))
		_, err = fmt.Fprintf(w, "%s#%d %s (%d likes): %s\n", pad, r.ID, r.Author, r.Likes, r.Content)
		return err == nil
	})
	return err
}
