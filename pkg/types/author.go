// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for scopuscite: the rows
// returned by the Scopus client, the aggregated per-author summaries, and the
// configuration structs for each stage.
package types

// AuthorRecord is one row of the authors table, decoded from a Scopus
// author retrieval response.
type AuthorRecord struct {
	// ID is the Scopus author id without the "AUTHOR_ID:" prefix.
	ID string `json:"author_id" yaml:"author_id"`

	// Name is the indexed name (e.g. "Smith J.").
	Name string `json:"name" yaml:"name"`

	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`

	// Affiliation is the display name of the current affiliation, if any.
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// FirstPub and LastPub bound the author's publication range (years).
	FirstPub int `json:"first_pub" yaml:"first_pub"`
	LastPub  int `json:"last_pub" yaml:"last_pub"`

	// NPubs is the document count reported by Scopus.
	NPubs int `json:"npubs" yaml:"npubs"`

	// NCites is the total citation count reported by Scopus.
	NCites int `json:"ncites" yaml:"ncites"`

	// NCitedBy is the number of distinct citing documents.
	NCitedBy int `json:"ncited_by" yaml:"ncited_by"`

	NCoauthors int `json:"ncoauthors" yaml:"ncoauthors"`
	HIndex     int `json:"hindex" yaml:"hindex"`
}

// AggregatedAuthorRecord combines an author's identity columns with totals
// recomputed from the publications table. NCitedBy is carried over from the
// AuthorRecord because publication data cannot reproduce it.
type AggregatedAuthorRecord struct {
	ID          string `json:"author_id" yaml:"author_id"`
	Name        string `json:"name" yaml:"name"`
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	NCitedBy    int    `json:"ncited_by" yaml:"ncited_by"`

	NPubs      int `json:"npubs" yaml:"npubs"`
	FirstPub   int `json:"first_pub" yaml:"first_pub"`
	LastPub    int `json:"last_pub" yaml:"last_pub"`
	NCites     int `json:"ncites" yaml:"ncites"`
	NCoauthors int `json:"ncoauthors" yaml:"ncoauthors"`
	HIndex     int `json:"hindex" yaml:"hindex"`

	// PCC and LCC sum the citations received before and after the year range.
	PCC int `json:"pcc" yaml:"pcc"`
	LCC int `json:"lcc" yaml:"lcc"`

	// Years is the range that CitesByYear, PubsByYear and CoauthorsAcc cover.
	Years YearRange `json:"years" yaml:"years"`

	CitesByYear  []int `json:"cites_by_year" yaml:"cites_by_year,flow"`
	PubsByYear   []int `json:"pubs_by_year" yaml:"pubs_by_year,flow"`
	CoauthorsAcc []int `json:"ncoauthors_acc" yaml:"ncoauthors_acc,flow"`

	// CoauthorsMean is the mean number of coauthors per publication.
	CoauthorsMean float64 `json:"ncoauthors_mean" yaml:"ncoauthors_mean"`
}
