package models

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// Family holds the pedigree's segregation evidence.
type Family struct {
	bun.BaseModel `bun:"table:families,alias:f"`

	UUID        string             `bun:"uuid,pk" json:"uuid"`
	Label       string             `bun:"label,notnull" json:"label"`
	Segregation *SegregationRecord `bun:"segregation,type:json" json:"segregation,omitempty"`
	Individuals StringArray        `bun:"individuals,type:json,notnull" json:"individuals"`
	OtherPMIDs  StringArray        `bun:"other_pmids,type:json,notnull" json:"other_pmids"`
	Status      Status             `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (f *Family) EntityKind() Kind { return KindFamily }
func (f *Family) EntityID() string { return f.UUID }

// BeforeUpdate updates the timestamp on modifications.
func (f *Family) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	f.UpdatedAt = time.Now()
	return nil
}

// Validate checks that required family fields are present.
func (f *Family) Validate() error {
	if f.Label == "" {
		return errors.New("label is required")
	}
	return nil
}

// Group is a cohort of families and individuals described together.
type Group struct {
	bun.BaseModel `bun:"table:evidence_groups,alias:g"`

	UUID        string      `bun:"uuid,pk" json:"uuid"`
	Label       string      `bun:"label,notnull" json:"label"`
	Families    StringArray `bun:"families,type:json,notnull" json:"families"`
	Individuals StringArray `bun:"individuals,type:json,notnull" json:"individuals"`
	Status      Status      `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (g *Group) EntityKind() Kind { return KindGroup }
func (g *Group) EntityID() string { return g.UUID }

// Annotation is the evidence curated from one article.
type Annotation struct {
	bun.BaseModel `bun:"table:annotations,alias:an"`

	UUID        string      `bun:"uuid,pk" json:"uuid"`
	ArticlePMID string      `bun:"article_pmid,notnull" json:"article_pmid"`
	Groups      StringArray `bun:"groups,type:json,notnull" json:"groups"`
	Families    StringArray `bun:"families,type:json,notnull" json:"families"`
	Individuals StringArray `bun:"individuals,type:json,notnull" json:"individuals"`
	Status      Status      `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Article *Article `bun:"rel:belongs-to,join:article_pmid=pmid" json:"-"`
}

func (a *Annotation) EntityKind() Kind { return KindAnnotation }
func (a *Annotation) EntityID() string { return a.UUID }

// Article is a publication that evidence is curated from.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	PMID      string    `bun:"pmid,pk" json:"pmid"`
	Title     string    `bun:"title,notnull" json:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (a *Article) EntityKind() Kind { return KindArticle }
func (a *Article) EntityID() string { return a.PMID }

// GetPubmedURL returns the full PubMed URL.
func (a *Article) GetPubmedURL() string {
	if a.PMID == "" {
		return ""
	}
	return "https://pubmed.ncbi.nlm.nih.gov/" + a.PMID
}

// Parent is an entity with an individual membership list.
type Parent interface {
	Entity
	// AddIndividual appends id and reports whether the list changed.
	AddIndividual(id string) bool
}

func (f *Family) AddIndividual(id string) bool {
	if f.Individuals.Contains(id) {
		return false
	}
	f.Individuals = f.Individuals.Append(id)
	return true
}

func (g *Group) AddIndividual(id string) bool {
	if g.Individuals.Contains(id) {
		return false
	}
	g.Individuals = g.Individuals.Append(id)
	return true
}

func (a *Annotation) AddIndividual(id string) bool {
	if a.Individuals.Contains(id) {
		return false
	}
	a.Individuals = a.Individuals.Append(id)
	return true
}

// AddFamily appends a family to the group and reports whether the list changed.
func (g *Group) AddFamily(id string) bool {
	if g.Families.Contains(id) {
		return false
	}
	g.Families = g.Families.Append(id)
	return true
}

// AddFamily appends a family to the annotation and reports whether the list changed.
func (a *Annotation) AddFamily(id string) bool {
	if a.Families.Contains(id) {
		return false
	}
	a.Families = a.Families.Append(id)
	return true
}
