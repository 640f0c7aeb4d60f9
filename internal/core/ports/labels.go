package ports

// LabelIndex answers whether a cross-reference label exists in the document.
//
//go:generate go run go.uber.org/mock/mockgen -source=labels.go -destination=mocks/mock_labels.go -package=mocks
type LabelIndex interface {
	HasLabel(label string) bool
}
