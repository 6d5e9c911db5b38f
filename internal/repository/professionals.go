package repository

import (
	"context"
	"strconv"
	"strings"

	"chat-assistant/internal/docstore"
	"chat-assistant/internal/models"
)

// Professional sort keys.
const (
	SortRating     = "rating"
	SortPriceLow   = "price_low"
	SortPriceHigh  = "price_high"
	SortExperience = "experience"
	SortNewest     = "newest"
)

// ProfessionalQuery holds the optional constraints of a professional search. Zero
// values mean "not constrained".
type ProfessionalQuery struct {
	Category      string
	Verified      *bool
	MinRating     float64
	MaxPrice      float64
	MinExperience int
	SortBy        string
	Limit         int
}

// ProfessionalQueryFromFilters maps extracted chat filters onto a professional search.
func ProfessionalQueryFromFilters(f models.Filters, limit int) ProfessionalQuery {
	q := ProfessionalQuery{Verified: f.Verified, SortBy: f.SortBy, Limit: limit}
	if f.MinRating != nil {
		q.MinRating = *f.MinRating
	}
	if f.MaxPrice != nil {
		q.MaxPrice = float64(*f.MaxPrice)
	}
	return q
}

func (q ProfessionalQuery) build() docstore.Query {
	dq := docstore.From(docstore.CollectionProfessionals)
	if q.Category != "" {
		dq = dq.Where("category", docstore.OpEqual, q.Category)
	}
	if q.Verified != nil {
		status := models.VerificationPending
		if *q.Verified {
			status = models.VerificationVerified
		}
		dq = dq.Where("verification_status", docstore.OpEqual, status)
	}
	if q.MinRating > 0 {
		dq = dq.Where("rating", docstore.OpGreaterEqual, q.MinRating)
	}
	if q.MaxPrice > 0 {
		dq = dq.Where("price", docstore.OpLessEqual, q.MaxPrice)
	}
	if q.MinExperience > 0 {
		dq = dq.Where("years_of_experience", docstore.OpGreaterEqual, q.MinExperience)
	}

	switch q.SortBy {
	case SortPriceLow:
		dq = dq.OrderBy("price", docstore.Asc)
	case SortPriceHigh:
		dq = dq.OrderBy("price", docstore.Desc)
	case SortExperience:
		dq = dq.OrderBy("years_of_experience", docstore.Desc)
	case SortNewest:
		dq = dq.OrderBy("createdAt", docstore.Desc)
	default:
		dq = dq.OrderBy("rating", docstore.Desc)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultProfessionalLimit
	}
	return dq.WithLimit(limit)
}

func (r *Repository) SearchProfessionals(ctx context.Context, q ProfessionalQuery) ([]models.Professional, error) {
	docs, err := r.query(ctx, "searchProfessionals", q.build())
	if err != nil {
		return nil, err
	}
	return r.decorate(ctx, toProfessionals(docs)), nil
}

// GetProfessionalByID returns nil when the professional does not exist.
func (r *Repository) GetProfessionalByID(ctx context.Context, id string) (*models.Professional, error) {
	doc, err := r.get(ctx, "getProfessionalById", docstore.CollectionProfessionals, id)
	if err != nil || doc == nil {
		return nil, err
	}
	p := r.decorate(ctx, []models.Professional{models.NormalizeProfessional(doc.ID, doc.Data)})[0]
	return &p, nil
}

// ResolutionKind tags the outcome of category resolution.
type ResolutionKind int

const (
	ResolutionUnknown ResolutionKind = iota
	ResolutionResolved
)

// Sources of a resolved category.
const (
	SourceTable  = "table"
	SourceLookup = "lookup"
)

// CategoryResolution is Resolved with a type id, or Unknown.
type CategoryResolution struct {
	Kind   ResolutionKind
	TypeID string
	Source string
}

func (c CategoryResolution) Resolved() bool {
	return c.Kind == ResolutionResolved
}

var categoryTypeIDs = map[string]string{
	"mbbs":      models.TypeMedical,
	"mental":    models.TypeMentalHealth,
	"legal":     models.TypeLegal,
	"placement": models.TypePlacement,
	"pathology": models.TypePathology,
	"pharmacy":  models.TypePharmacy,
}

// ResolveCategory maps a category label to a professional type id: the fixed table
// first, then a name lookup in professional_types, otherwise Unknown.
func (r *Repository) ResolveCategory(ctx context.Context, category string) (CategoryResolution, error) {
	key := strings.ToLower(strings.TrimSpace(category))
	if id, ok := categoryTypeIDs[key]; ok {
		return CategoryResolution{Kind: ResolutionResolved, TypeID: id, Source: SourceTable}, nil
	}
	if key == "" {
		return CategoryResolution{Kind: ResolutionUnknown}, nil
	}

	types, err := r.GetProfessionalTypes(ctx)
	if err != nil {
		return CategoryResolution{}, err
	}
	for _, t := range types {
		if strings.EqualFold(t.Name, key) || strings.EqualFold(t.Label, key) {
			return CategoryResolution{Kind: ResolutionResolved, TypeID: t.ID, Source: SourceLookup}, nil
		}
	}
	return CategoryResolution{Kind: ResolutionUnknown}, nil
}

// typeIDValues returns the string form of id plus its numeric form when it has one,
// since stored professional_type_id values use both.
func typeIDValues(id string) []interface{} {
	values := []interface{}{id}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		values = append(values, n)
	}
	return values
}

// GetProfessionalsByCategory returns the professionals of a category. An unresolvable
// category returns the unfiltered collection up to limit.
func (r *Repository) GetProfessionalsByCategory(ctx context.Context, category string, limit int) ([]models.Professional, error) {
	if limit <= 0 {
		limit = r.categoryLimit
	}

	res, err := r.ResolveCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	q := docstore.From(docstore.CollectionProfessionals).WithLimit(limit)
	if res.Resolved() {
		q = q.Where("professional_type_id", docstore.OpIn, typeIDValues(res.TypeID)).
			OrderBy("professional_type_id", docstore.Asc)
	} else {
		r.logger.Warn("unknown category, returning unfiltered professionals", map[string]interface{}{
			"category": category,
		})
	}

	docs, err := r.query(ctx, "getProfessionalsByCategory", q)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("professionals by category", map[string]interface{}{
		"category": category,
		"typeId":   res.TypeID,
		"source":   res.Source,
		"count":    len(docs),
	})
	return r.decorate(ctx, toProfessionals(docs)), nil
}

// GetAllDoctors returns medical professionals.
func (r *Repository) GetAllDoctors(ctx context.Context, limit int) ([]models.Professional, error) {
	if limit <= 0 {
		limit = DefaultDoctorLimit
	}
	q := docstore.From(docstore.CollectionProfessionals).
		Where("professional_type_id", docstore.OpIn, typeIDValues(models.TypeMedical)).
		WithLimit(limit)

	docs, err := r.query(ctx, "getAllDoctors", q)
	if err != nil {
		return nil, err
	}
	return r.decorate(ctx, toProfessionals(docs)), nil
}

func toProfessionals(docs []docstore.Document) []models.Professional {
	out := make([]models.Professional, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.NormalizeProfessional(d.ID, d.Data))
	}
	return out
}

// decorate attaches type labels. A failure to load the labels leaves them empty.
func (r *Repository) decorate(ctx context.Context, pros []models.Professional) []models.Professional {
	if len(pros) == 0 {
		return pros
	}
	types, err := r.GetProfessionalTypes(ctx)
	if err != nil {
		r.logger.Warn("professional type labels unavailable", map[string]interface{}{"error": err.Error()})
		return pros
	}

	labels := make(map[string]string, len(types))
	for _, t := range types {
		labels[t.ID] = t.Label
	}
	for i := range pros {
		if label, ok := labels[pros[i].ProfessionalTypeID]; ok {
			pros[i].TypeLabel = label
		}
	}
	return pros
}
