//go:build sqlite

package catalog

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}
