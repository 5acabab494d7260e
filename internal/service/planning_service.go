package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/cache"
	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
	"github.com/andresuchdata/fbaplan/backend-go/internal/export"
	"github.com/andresuchdata/fbaplan/backend-go/internal/ingest"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/repository"
	"github.com/andresuchdata/fbaplan/backend-go/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrStorageDisabled is returned when publishing without object storage.
var ErrStorageDisabled = errors.New("object storage is not configured")

// PlanRequest is one planning run: the uploaded files and the controls.
type PlanRequest struct {
	Sales     []ingest.File
	Inventory []ingest.File
	Params    planning.Params
}

// ExportResult is a rendered workbook and, when published, its object key.
type ExportResult struct {
	FileName  string
	Data      []byte
	ObjectKey string
	Report    *domain.Report
}

// Options wires the collaborators of a PlanningService. Only Lookups is
// required; nil collaborators disable their feature.
type Options struct {
	Lookups       planning.Lookups
	InventoryKeys []planning.Field
	Cache         cache.ReportCache
	Storage       storage.ObjectStorage
	LookupRepo    repository.LookupRepository
	BrandName     string
	StoragePrefix string
}

type PlanningService struct {
	planner       atomic.Pointer[planning.Planner]
	normalizer    *planning.Normalizer
	cache         cache.ReportCache
	storage       storage.ObjectStorage
	lookupRepo    repository.LookupRepository
	brandName     string
	storagePrefix string
}

func NewPlanningService(opts Options) (*PlanningService, error) {
	if opts.Cache == nil {
		opts.Cache = cache.NewNoopReportCache()
	}

	s := &PlanningService{
		normalizer:    planning.NewNormalizer(opts.InventoryKeys),
		cache:         opts.Cache,
		storage:       opts.Storage,
		lookupRepo:    opts.LookupRepo,
		brandName:     opts.BrandName,
		storagePrefix: opts.StoragePrefix,
	}
	if err := s.setLookups(opts.Lookups); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PlanningService) setLookups(lookups planning.Lookups) error {
	p, err := planning.NewPlanner(lookups, planning.DefaultHierarchy(), s.normalizer)
	if err != nil {
		return err
	}
	s.planner.Store(p)
	return nil
}

// Plan runs the planner on the request, serving repeated identical runs
// from the report cache.
func (s *PlanningService) Plan(ctx context.Context, req PlanRequest) (*domain.Report, error) {
	params := req.Params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	key := cache.ReportKey(params, digests(req.Sales), digests(req.Inventory))
	if report, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		log.Debug().Str("key", key).Msg("planning: served report from cache")
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get report failed")
	}

	sales, err := ingest.Load(ctx, domain.TableSales, req.Sales)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales files: %w", err)
	}
	inventory, err := ingest.Load(ctx, domain.TableInventory, req.Inventory)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory files: %w", err)
	}

	report, err := s.planner.Load().Plan(sales, inventory, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReport(ctx, key, report); err != nil {
		log.Warn().Err(err).Msg("planning: cache set report failed")
	}

	return report, nil
}

// Export plans the request and renders the workbook. With publish set the
// workbook is also uploaded to object storage.
func (s *PlanningService) Export(ctx context.Context, req PlanRequest, publish bool) (*ExportResult, error) {
	if publish && s.storage == nil {
		return nil, ErrStorageDisabled
	}

	report, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	branding := export.Branding{BrandName: s.brandName, GeneratedAt: report.Summary.GeneratedAt}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, report, branding); err != nil {
		return nil, err
	}

	result := &ExportResult{
		FileName: export.WorkbookName(branding),
		Data:     buf.Bytes(),
		Report:   report,
	}

	if publish {
		key := storage.JoinKey(s.storagePrefix, result.FileName)
		if err := s.storage.UploadObject(ctx, key, result.Data, xlsxContentType); err != nil {
			return nil, err
		}
		result.ObjectKey = key
		log.Info().Str("key", key).Str("run_id", report.Summary.RunID).Msg("planning: published workbook")
	}

	return result, nil
}

// ImportLookups replaces the lookup tables used by subsequent runs. They are
// persisted first when a lookup repository is configured. Cached reports
// were computed with the old tables and are dropped.
func (s *PlanningService) ImportLookups(ctx context.Context, clusters map[string]string, centers []planning.FulfillmentCenter) error {
	if s.lookupRepo != nil {
		if err := s.lookupRepo.ReplaceLookups(ctx, clusters, centers); err != nil {
			return err
		}
	}

	if err := s.setLookups(planning.NewLookups(clusters, centers)); err != nil {
		return err
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("planning: cache invalidation after lookup import failed")
	}
	return nil
}

// ReloadLookups refreshes the lookup tables from the repository.
func (s *PlanningService) ReloadLookups(ctx context.Context) error {
	if s.lookupRepo == nil {
		return nil
	}
	lookups, err := s.lookupRepo.LoadLookups(ctx)
	if err != nil {
		return err
	}
	return s.setLookups(lookups)
}

// FetchObjects downloads the supported report files stored under prefix.
func (s *PlanningService) FetchObjects(ctx context.Context, prefix string) ([]ingest.File, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	objects, err := s.storage.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var files []ingest.File
	for _, obj := range objects {
		if _, err := ingest.DetectFormat(obj.Key); err != nil {
			continue
		}
		data, err := s.storage.GetObject(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		files = append(files, ingest.File{Name: obj.Key, Data: data})
	}
	return files, nil
}

// ServiceLevel pairs a selectable service level with its multiplier.
type ServiceLevel struct {
	Percent int     `json:"percent"`
	ZValue  float64 `json:"z_value"`
}

// ServiceLevels lists the selectable service levels.
func (s *PlanningService) ServiceLevels() []ServiceLevel {
	levels := planning.ServiceLevels()
	out := make([]ServiceLevel, 0, len(levels))
	for _, l := range levels {
		z, _ := l.ZScore()
		out = append(out, ServiceLevel{Percent: int(l), ZValue: z})
	}
	return out
}

func digests(files []ingest.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = cache.Digest(f.Name, f.Data)
	}
	return out
}
