package ports

import "context"

// FileFinder locates TeX support files such as bibliography databases and styles.
//
//go:generate go run go.uber.org/mock/mockgen -source=finder.go -destination=mocks/mock_finder.go -package=mocks
type FileFinder interface {
	// Find returns the absolute path of name, searching dir first and then the
	// TeX installation for the given format ("bib", "bst"). It returns "" when
	// nothing is found.
	Find(ctx context.Context, dir, name, format string) string
}
