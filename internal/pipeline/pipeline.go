// Package pipeline sequences one daily post run: select, render, describe,
// link, optional review gate, publish, record.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/wellnesslabco/glowpost/internal/affiliate"
	"github.com/wellnesslabco/glowpost/internal/catalog"
	"github.com/wellnesslabco/glowpost/internal/describe"
	"github.com/wellnesslabco/glowpost/internal/history"
	"github.com/wellnesslabco/glowpost/internal/pinterest"
	"github.com/wellnesslabco/glowpost/internal/render"
	"github.com/wellnesslabco/glowpost/internal/selector"
	"github.com/wellnesslabco/glowpost/storage"
)

// Renderer draws the promotional image for a product.
type Renderer interface {
	Render(product catalog.Product, outputPath string) (render.Image, error)
}

// Describer produces marketing copy. It never fails; external-service
// problems degrade to the template internally.
type Describer interface {
	Generate(ctx context.Context, product catalog.Product, useExternal bool) describe.Description
}

// Publisher runs the remote publish protocol.
type Publisher interface {
	Publish(ctx context.Context, req pinterest.PublishRequest) (*pinterest.Attempt, error)
}

// Recorder appends to the posting history log.
type Recorder interface {
	Append(record history.Record) error
}

// Auditor writes the optional post audit row. May be nil.
type Auditor interface {
	RecordPost(ctx context.Context, audit storage.PostAudit) error
}

// Preview is what the review gate shows before anything leaves the machine.
type Preview struct {
	Product       catalog.Product
	Ingredient    string
	ImagePath     string
	AffiliateLink string
	Description   string
	Source        describe.Source
}

// ConfirmFunc is the review gate: return false to abort the run without
// publishing. A nil ConfirmFunc means fully automatic posting.
type ConfirmFunc func(preview Preview) (bool, error)

// Config carries the per-run settings the orchestrator needs.
type Config struct {
	OutputDir    string
	AffiliateTag string
	BoardName    string
	UseExternal  bool
	Trending     []string
}

// Pipeline wires the collaborators for one run. Construct with New; all
// dependencies are explicit, nothing is looked up ambiently.
type Pipeline struct {
	cfg       Config
	catalog   catalog.Provider
	renderer  Renderer
	describer Describer
	publisher Publisher
	recorder  Recorder
	auditor   Auditor
	confirm   ConfirmFunc
	now       func() time.Time
}

func New(cfg Config, provider catalog.Provider, renderer Renderer, describer Describer, publisher Publisher, recorder Recorder) *Pipeline {
	if len(cfg.Trending) == 0 {
		cfg.Trending = selector.DefaultTrendingIngredients
	}
	return &Pipeline{
		cfg:       cfg,
		catalog:   provider,
		renderer:  renderer,
		describer: describer,
		publisher: publisher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// WithConfirm installs the review gate.
func (p *Pipeline) WithConfirm(confirm ConfirmFunc) *Pipeline {
	p.confirm = confirm
	return p
}

// WithAuditor installs the optional sqlite post audit.
func (p *Pipeline) WithAuditor(auditor Auditor) *Pipeline {
	p.auditor = auditor
	return p
}

// Result summarizes a finished run.
type Result struct {
	RunID         string
	Aborted       bool
	Selection     selector.Selection
	Image         render.Image
	Description   describe.Description
	AffiliateLink string
	ProductURL    string
	PinID         string
	PinURL        string
	BoardID       string
	InfoPath      string
}

// runInfo is the structured per-run record written next to the artifacts.
type runInfo struct {
	RunID             string          `json:"run_id"`
	Date              time.Time       `json:"date"`
	Product           catalog.Product `json:"product"`
	MatchedIngredient string          `json:"matched_ingredient,omitempty"`
	ImagePath         string          `json:"image_path"`
	DescriptionPath   string          `json:"description_path"`
	LinkPath          string          `json:"link_path"`
	AffiliateLink     string          `json:"affiliate_link"`
	DescriptionSource string          `json:"description_source"`
}

// Run executes one complete pipeline pass. Every failure is fatal to the run;
// artifacts already written stay on disk either way.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	now := p.now()
	stamp := now.Format("20060102")

	slog.Info("starting daily post run", "run_id", runID, "date", now.Format("2006-01-02"))

	candidates, err := p.catalog.FetchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	selection, err := selector.Select(candidates, p.cfg.Trending)
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	product := selection.Product

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	imagePath := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("pinterest_%s_%s.jpg", stamp, product.ASIN))
	image, err := p.renderer.Render(product, imagePath)
	if err != nil {
		return nil, fmt.Errorf("render image: %w", err)
	}

	description := p.describer.Generate(ctx, product, p.cfg.UseExternal)

	link, err := affiliate.Link(product.ASIN, p.cfg.AffiliateTag)
	if err != nil {
		return nil, fmt.Errorf("build affiliate link: %w", err)
	}
	productURL, err := affiliate.ProductURL(product.ASIN)
	if err != nil {
		return nil, fmt.Errorf("build product url: %w", err)
	}

	descPath := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("description_%s.txt", stamp))
	if err := os.WriteFile(descPath, []byte(description.Text), 0644); err != nil {
		return nil, fmt.Errorf("write description artifact: %w", err)
	}

	linkPath := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("link_%s.txt", stamp))
	linkBody := fmt.Sprintf("Affiliate Link: %s\nProduct: %s\nASIN: %s\n", link, product.Name, product.ASIN)
	if err := os.WriteFile(linkPath, []byte(linkBody), 0644); err != nil {
		return nil, fmt.Errorf("write link artifact: %w", err)
	}

	info := runInfo{
		RunID:             runID,
		Date:              now,
		Product:           product,
		MatchedIngredient: selection.Ingredient,
		ImagePath:         image.Path,
		DescriptionPath:   descPath,
		LinkPath:          linkPath,
		AffiliateLink:     link,
		DescriptionSource: string(description.Source),
	}
	infoPath := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("post_info_%s.json", stamp))
	if err := writeJSON(infoPath, info); err != nil {
		return nil, fmt.Errorf("write run info: %w", err)
	}

	result := &Result{
		RunID:         runID,
		Selection:     selection,
		Image:         image,
		Description:   description,
		AffiliateLink: link,
		ProductURL:    productURL,
		InfoPath:      infoPath,
	}

	if p.confirm != nil {
		ok, err := p.confirm(Preview{
			Product:       product,
			Ingredient:    selection.Ingredient,
			ImagePath:     image.Path,
			AffiliateLink: link,
			Description:   description.Text,
			Source:        description.Source,
		})
		if err != nil {
			return nil, fmt.Errorf("review gate: %w", err)
		}
		if !ok {
			slog.Info("run aborted at review gate", "run_id", runID, "asin", product.ASIN)
			result.Aborted = true
			return result, nil
		}
	}

	attempt, err := p.publisher.Publish(ctx, pinterest.PublishRequest{
		BoardName:     p.cfg.BoardName,
		Title:         product.Name,
		Description:   description.Text,
		Link:          link,
		ImagePath:     image.Path,
		DominantColor: "#FFE5E5",
	})
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	result.PinID = attempt.PinID
	result.PinURL = attempt.PinURL
	result.BoardID = attempt.BoardID

	record := history.Record{
		PostedAt:      now,
		ASIN:          product.ASIN,
		Product:       product.Name,
		AffiliateLink: link,
	}
	if err := p.recorder.Append(record); err != nil {
		return nil, fmt.Errorf("record post: %w", err)
	}

	if p.auditor != nil {
		audit := storage.PostAudit{
			ASIN:              product.ASIN,
			ProductName:       product.Name,
			AffiliateLink:     link,
			PinID:             attempt.PinID,
			BoardID:           attempt.BoardID,
			ImagePath:         image.Path,
			DescriptionSource: string(description.Source),
		}
		if err := p.auditor.RecordPost(ctx, audit); err != nil {
			// The JSON log already has the record; the audit row is best effort.
			slog.Warn("failed to write post audit row", "error", err, "asin", product.ASIN)
		}
	}

	slog.Info("daily post run complete",
		"run_id", runID,
		"asin", product.ASIN,
		"pin_id", attempt.PinID,
		"pin_url", attempt.PinURL,
	)
	return result, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
