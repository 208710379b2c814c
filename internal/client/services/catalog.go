package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/filex"
	"github.com/dmitrijs2005/libraryclient/internal/logging"
)

var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownFormat   = errors.New("unknown export format, use excel or word")
)

// ExportFormat selects the document type produced by an export endpoint.
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportWord  ExportFormat = "word"
)

func (f ExportFormat) extension() string {
	if f == ExportWord {
		return ".docx"
	}
	return ".xlsx"
}

// ParseExportFormat accepts "excel", "word" or "" (excel).
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportExcel:
		return ExportExcel, nil
	case ExportWord:
		return ExportWord, nil
	default:
		return "", ErrUnknownFormat
	}
}

// CatalogClient is the subset of *api.Client the catalog service uses.
type CatalogClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
	Download(ctx context.Context, path string, query url.Values, fallbackName string) (*api.Attachment, error)
}

// CatalogService defines the operations available on every resource
// collection. Permission checks happen on the backend; callers map the
// returned api errors to views.
type CatalogService interface {
	List(ctx context.Context, res models.Resource) ([]models.Tabular, error)
	Get(ctx context.Context, res models.Resource, id int64) (models.Tabular, error)
	Create(ctx context.Context, res models.Resource, fields map[string]any) (models.Tabular, error)
	Update(ctx context.Context, res models.Resource, id int64, fields map[string]any) (models.Tabular, error)
	Delete(ctx context.Context, res models.Resource, id int64) error
	Stats(ctx context.Context, res models.Resource) (models.Stats, error)
	// Export downloads the collection as a document and writes it into the
	// export directory. It returns the path of the written file.
	Export(ctx context.Context, res models.Resource, format ExportFormat) (string, error)
	ReturnLoan(ctx context.Context, id int64) (*models.Loan, error)
}

type catalogService struct {
	client    CatalogClient
	exportDir string
	log       logging.Logger
}

func NewCatalogService(client CatalogClient, exportDir string, log logging.Logger) CatalogService {
	if log == nil {
		log = logging.Nop()
	}
	return &catalogService{client: client, exportDir: exportDir, log: log}
}

// codec decodes one resource's JSON into its record type.
type codec struct {
	one  func(json.RawMessage) (models.Tabular, error)
	list func(json.RawMessage) ([]models.Tabular, error)
}

func codecFor[T models.Tabular]() codec {
	return codec{
		one: func(raw json.RawMessage) (models.Tabular, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		list: func(raw json.RawMessage) ([]models.Tabular, error) {
			var vs []T
			if err := json.Unmarshal(raw, &vs); err != nil {
				return nil, err
			}
			out := make([]models.Tabular, 0, len(vs))
			for _, v := range vs {
				out = append(out, v)
			}
			return out, nil
		},
	}
}

var codecs = map[models.Resource]codec{
	models.Genres:    codecFor[models.Genre](),
	models.Libraries: codecFor[models.Library](),
	models.Books:     codecFor[models.Book](),
	models.Members:   codecFor[models.Member](),
	models.Loans:     codecFor[models.Loan](),
}

func lookup(res models.Resource) (codec, error) {
	c, ok := codecs[res]
	if !ok {
		return codec{}, fmt.Errorf("%w: %q", ErrUnknownResource, res)
	}
	return c, nil
}

func collectionPath(res models.Resource) string { return "/" + string(res) + "/" }

func itemPath(res models.Resource, id int64) string {
	return collectionPath(res) + strconv.FormatInt(id, 10) + "/"
}

// unwrapPage returns the results array of a paginated response, or raw
// unchanged when the body is already a plain array.
func unwrapPage(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, nil
	}
	var page struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return nil, errors.New("object without results")
	}
	return page.Results, nil
}

func (s *catalogService) List(ctx context.Context, res models.Resource) ([]models.Tabular, error) {
	c, err := lookup(res)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := s.client.Get(ctx, collectionPath(res), nil, &raw); err != nil {
		return nil, fmt.Errorf("list %s: %w", res, err)
	}

	items, err := unwrapPage(raw)
	if err != nil {
		return nil, fmt.Errorf("list %s: decode: %w", res, err)
	}
	rows, err := c.list(items)
	if err != nil {
		return nil, fmt.Errorf("list %s: decode: %w", res, err)
	}
	return rows, nil
}

func (s *catalogService) Get(ctx context.Context, res models.Resource, id int64) (models.Tabular, error) {
	c, err := lookup(res)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := s.client.Get(ctx, itemPath(res, id), nil, &raw); err != nil {
		return nil, fmt.Errorf("get %s/%d: %w", res, id, err)
	}
	return decodeOne(c, raw, "get", res)
}

func (s *catalogService) Create(ctx context.Context, res models.Resource, fields map[string]any) (models.Tabular, error) {
	c, err := lookup(res)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, collectionPath(res), fields, &raw); err != nil {
		return nil, fmt.Errorf("create %s: %w", res, err)
	}
	s.log.Info(ctx, "record created", "resource", res)
	return decodeOne(c, raw, "create", res)
}

func (s *catalogService) Update(ctx context.Context, res models.Resource, id int64, fields map[string]any) (models.Tabular, error) {
	c, err := lookup(res)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := s.client.Patch(ctx, itemPath(res, id), fields, &raw); err != nil {
		return nil, fmt.Errorf("update %s/%d: %w", res, id, err)
	}
	s.log.Info(ctx, "record updated", "resource", res, "id", id)
	return decodeOne(c, raw, "update", res)
}

func (s *catalogService) Delete(ctx context.Context, res models.Resource, id int64) error {
	if _, err := lookup(res); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, itemPath(res, id)); err != nil {
		return fmt.Errorf("delete %s/%d: %w", res, id, err)
	}
	s.log.Info(ctx, "record deleted", "resource", res, "id", id)
	return nil
}

func (s *catalogService) Stats(ctx context.Context, res models.Resource) (models.Stats, error) {
	if _, err := lookup(res); err != nil {
		return nil, err
	}
	stats := models.Stats{}
	if err := s.client.Get(ctx, collectionPath(res)+"stats/", nil, &stats); err != nil {
		return nil, fmt.Errorf("stats %s: %w", res, err)
	}
	return stats, nil
}

func (s *catalogService) Export(ctx context.Context, res models.Resource, format ExportFormat) (string, error) {
	if _, err := lookup(res); err != nil {
		return "", err
	}
	if format == "" {
		format = ExportExcel
	}

	q := url.Values{"type": {string(format)}}
	att, err := s.client.Download(ctx, collectionPath(res)+"export/", q, exportName(res, format))
	if err != nil {
		return "", fmt.Errorf("export %s: %w", res, err)
	}

	path, err := filex.WriteFile(s.exportDir, att.Name, att.Data)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", res, err)
	}
	s.log.Info(ctx, "export written", "resource", res, "path", path, "bytes", len(att.Data))
	return path, nil
}

func (s *catalogService) ReturnLoan(ctx context.Context, id int64) (*models.Loan, error) {
	var loan models.Loan
	if err := s.client.Post(ctx, itemPath(models.Loans, id)+"return/", nil, &loan); err != nil {
		return nil, fmt.Errorf("return loan %d: %w", id, err)
	}
	return &loan, nil
}

func decodeOne(c codec, raw json.RawMessage, op string, res models.Resource) (models.Tabular, error) {
	rec, err := c.one(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: decode: %w", op, res, err)
	}
	return rec, nil
}

// exportName mirrors the backend's file naming ("Books.xlsx").
func exportName(res models.Resource, format ExportFormat) string {
	name := string(res)
	if name == "" {
		return "export" + format.extension()
	}
	return strings.ToUpper(name[:1]) + name[1:] + format.extension()
}
