package entity

// Product belongs to exactly one folder and owns an ordered list of
// version ids. LatestVersion mirrors the highest version number currently
// owned and is recomputed whenever a version is added or removed.
type Product struct {
	Base
	ProductType   string   `json:"product_type"`
	FolderID      string   `json:"folder_id"`
	Versions      []string `json:"versions,omitempty"`
	LatestVersion int      `json:"latest_version"`
}

// NewProduct constructs a product attached to the given folder.
func NewProduct(name, productType, folderID, createdBy string) *Product {
	p := &Product{
		Base:        newBase(name, createdBy),
		ProductType: productType,
		FolderID:    folderID,
	}
	p.Status = "Not Started"
	return p
}

// Validate checks product invariants.
func (p *Product) Validate() []Violation {
	vs := p.validateBase()
	if p.ProductType == "" {
		vs = append(vs, Violation{Field: "product_type", Msg: "is required"})
	}
	if p.FolderID == "" {
		vs = append(vs, Violation{Field: "folder_id", Msg: "is required"})
	}
	if p.LatestVersion < 0 {
		vs = append(vs, Violation{Field: "latest_version", Msg: "must not be negative"})
	}
	return vs
}

// AttachVersion appends a version id and bumps LatestVersion if number is
// higher than the current maximum.
func (p *Product) AttachVersion(id string, number int) {
	for _, v := range p.Versions {
		if v == id {
			return
		}
	}
	p.Versions = append(p.Versions, id)
	if number > p.LatestVersion {
		p.LatestVersion = number
	}
}

// DetachVersion removes a version id. The caller must recompute
// LatestVersion from the surviving versions (RecomputeLatest).
func (p *Product) DetachVersion(id string) bool {
	var removed bool
	p.Versions, removed = RemoveID(p.Versions, id)
	return removed
}

// RecomputeLatest sets LatestVersion to the maximum of the given surviving
// version numbers, or zero when none remain.
func (p *Product) RecomputeLatest(numbers []int) {
	latest := 0
	for _, n := range numbers {
		if n > latest {
			latest = n
		}
	}
	p.LatestVersion = latest
}
