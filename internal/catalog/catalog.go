package catalog

// ProjectIndex defines the interface for catalog operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type ProjectIndex interface {
	UpsertProject(row ProjectRow, body string) error
	DeleteProject(folder, projectID string) error
	ListProjects(limit, offset int, tag, sort string) ([]ProjectRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllHeads() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ProjectIndex at compile time.
var _ ProjectIndex = (*DB)(nil)
