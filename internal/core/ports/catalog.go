package ports

// BookInput carries the fields of a new catalog record.
type BookInput struct {
	Title           string   `json:"title" validate:"notblank"`
	Author          string   `json:"author" validate:"notblank"`
	Description     string   `json:"description" validate:"notblank"`
	Genre           []string `json:"genre" validate:"required,min=1,dive,notblank"`
	Cover           string   `json:"cover,omitempty" validate:"omitempty,url"`
	ISBN            string   `json:"isbn,omitempty"`
	PublicationYear int      `json:"publicationYear,omitempty" validate:"omitempty,pubyear"`
	Publisher       string   `json:"publisher,omitempty"`
	Pages           int      `json:"pages,omitempty" validate:"omitempty,gt=0"`
	Language        string   `json:"language,omitempty"`
}

// BookPatch carries a partial update. Nil fields are left unchanged; a non-nil
// Genre replaces the whole tag list. Lending state is not patchable.
type BookPatch struct {
	Title           *string
	Author          *string
	Description     *string
	Genre           []string
	Cover           *string
	ISBN            *string
	PublicationYear *int
	Publisher       *string
	Pages           *int
	Language        *string
}

// Empty reports whether the patch supplies no field at all.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Description == nil && p.Genre == nil &&
		p.Cover == nil && p.ISBN == nil && p.PublicationYear == nil && p.Publisher == nil &&
		p.Pages == nil && p.Language == nil
}

// SearchScope selects which fields free-text search looks at.
type SearchScope string

const (
	// ScopeCatalog matches title, author and description.
	ScopeCatalog SearchScope = "catalog"
	// ScopeFull matches title, author, description and genre tags.
	ScopeFull SearchScope = "full"
	// ScopeAdmin matches title, author and ISBN.
	ScopeAdmin SearchScope = "admin"
)

// SortKey selects the ordering of query results.
type SortKey string

const (
	SortNone   SortKey = "none"
	SortTitle  SortKey = "title"
	SortAuthor SortKey = "author"
	SortNewest SortKey = "newest"
	SortOldest SortKey = "oldest"
)

// BookQuery holds the filter parameters of the query pipeline.
type BookQuery struct {
	SearchText    string
	Scope         SearchScope // empty = ScopeCatalog
	Genres        []string    // match any; empty = no filter
	AvailableOnly bool
	Sort          SortKey // empty = SortNone
}
