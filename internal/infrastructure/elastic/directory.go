// Package elastic keeps the member directory in Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// Directory indexes verified identities keyed by platform id.
type Directory struct {
	es    *elasticsearch.Client
	index string
}

func NewDirectory(es *elasticsearch.Client, index string) *Directory {
	return &Directory{es: es, index: index}
}

type memberDoc struct {
	PlatformID  string `json:"platform_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Council     bool   `json:"council"`
	VerifiedAt  string `json:"verified_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (d *Directory) Index(ctx context.Context, i *entity.Identity) error {
	if !i.IsVerified() {
		return nil
	}
	doc := memberDoc{
		PlatformID:  i.PlatformID,
		DisplayName: i.DisplayName,
		Email:       i.Email,
		Council:     i.IsCouncilMember,
		VerifiedAt:  i.VerifiedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:   i.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: i.PlatformID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over email and display name.
func (d *Directory) Search(ctx context.Context, q string, size int) ([]application.DirectoryEntry, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "display_name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := d.es.Search(
		d.es.Search.WithContext(c),
		d.es.Search.WithIndex(d.index),
		d.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string    `json:"_id"`
				Source memberDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.DirectoryEntry, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		e := application.DirectoryEntry{
			PlatformID:  h.Source.PlatformID,
			DisplayName: h.Source.DisplayName,
			Email:       h.Source.Email,
			Council:     h.Source.Council,
		}
		if e.PlatformID == "" {
			e.PlatformID = h.ID
		}
		if t, err := time.Parse(time.RFC3339Nano, h.Source.VerifiedAt); err == nil {
			e.VerifiedAt = t
		}
		out = append(out, e)
	}
	return out, nil
}

var _ application.Directory = (*Directory)(nil)
