package deadcode

// Icon names understood by renderers.
const (
	IconError   = "error"
	IconWarning = "warning"
	IconTrash   = "trash"
)

// Theme colour tokens understood by renderers.
const (
	ColorErrorForeground   = "errorForeground"
	ColorWarningForeground = "warningForeground"
	ColorDeadCode          = "debugIcon.foreground"
)

// Decoration is the icon and colour token a renderer draws next to a node.
type Decoration struct {
	Icon  string
	Color string // empty means the default foreground
}

// Decorate returns the decoration for n. It depends only on n's kind and
// category.
func Decorate(n Node) Decoration {
	if n.Kind == NodeAction {
		return Decoration{Icon: IconTrash}
	}
	switch n.Category {
	case CategoryError:
		return Decoration{Icon: IconError, Color: ColorErrorForeground}
	case CategoryWarning:
		return Decoration{Icon: IconWarning, Color: ColorWarningForeground}
	case CategoryDeadCode:
		return Decoration{Icon: IconWarning, Color: ColorDeadCode}
	}
	return Decoration{}
}
