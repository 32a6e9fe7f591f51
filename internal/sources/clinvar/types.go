package clinvar

// SearchResponse is the esearchresult object of an ESearch reply.
type SearchResponse struct {
	Count  string   `json:"count"`
	IdList []string `json:"idlist"`
}

// VariationSummary is one document of an ESummary reply for db=clinvar.
type VariationSummary struct {
	UID              string         `json:"uid"`
	Accession        string         `json:"accession"`
	AccessionVersion string         `json:"accession_version"`
	Title            string         `json:"title"`
	ObjType          string         `json:"obj_type"`
	VariationSet     []VariationSet `json:"variation_set"`
	Genes            []Gene         `json:"genes"`
	// Error is set by E-utilities for ids it has no document for.
	Error string `json:"error"`
}

// VariationSet describes one allele of the variation.
type VariationSet struct {
	VariationName  string `json:"variation_name"`
	CDNAChange     string `json:"cdna_change"`
	CanonicalSPDI  string `json:"canonical_spdi"`
	VariationXrefs []Xref `json:"variation_xrefs"`
}

// Xref links the variation to another database, e.g. ClinGen or dbSNP.
type Xref struct {
	DBSource string `json:"db_source"`
	DBID     string `json:"db_id"`
}

// Gene is a gene overlapped by the variation.
type Gene struct {
	Symbol string `json:"symbol"`
	GeneID string `json:"geneid"`
}
