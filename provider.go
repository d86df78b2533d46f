package deadcode

// Disposable releases a subscription or registration.
type Disposable func()

// TreeDataProvider supplies the nodes of a tree view.
type TreeDataProvider interface {
	// RootNodes returns the top-level nodes.
	RootNodes() []Node
	// Children returns the children of parent. Leaves and actions have none.
	Children(parent Node) []Node
	// OnDidChangeTreeData registers fn to be called whenever the whole tree
	// should be redrawn.
	OnDidChangeTreeData(fn func()) Disposable
}

// ViewModel is a TreeDataProvider that can be rescanned or reset.
type ViewModel interface {
	TreeDataProvider
	Refresh()
	ClearList()
	Counts() map[Category]int
}
