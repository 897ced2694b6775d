package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

const statusTimeout = 10 * time.Second

// ListModels returns the models whose provider is enabled.
func (s *Service) ListModels() []core.ModelInfo {
	return s.router.Models()
}

// WarehouseStatus pings the warehouse. Connection failures are reported in
// the result, not as an error.
func (s *Service) WarehouseStatus(ctx context.Context) WarehouseStatus {
	if err := WarehouseConfigured(s.whCfg); err != nil {
		return WarehouseStatus{
			WarehouseName: "Not configured",
			Status:        WarehouseUnknown,
			HTTPPath:      s.whCfg.HTTPPath,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	w, err := s.ensureWarehouse(ctx)
	if err == nil {
		err = w.Ping(ctx)
	}

	var st WarehouseStatus
	if w != nil {
		info := w.Info()
		st = WarehouseStatus{WarehouseID: optional(info.ID), WarehouseName: info.Name, HTTPPath: info.HTTPPath}
	} else {
		st = s.fallbackStatus()
	}

	if err != nil {
		s.logger.Error("failed to connect to warehouse", "error", err)
		st.Status = WarehouseStopped
		st.Error = err.Error()
		return st
	}
	st.Status = WarehouseRunning
	return st
}

// fallbackStatus describes the warehouse from config alone.
func (s *Service) fallbackStatus() WarehouseStatus {
	id := s.whCfg.Database
	if s.whCfg.HTTPPath != "" {
		id = path.Base(s.whCfg.HTTPPath)
	} else if id == "" {
		id = s.whCfg.Path
	}
	name := s.whCfg.Name
	if name == "" {
		name = s.whCfg.Type
	}
	return WarehouseStatus{WarehouseID: optional(id), WarehouseName: name, HTTPPath: s.whCfg.HTTPPath}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListCatalogs lists the warehouse catalogs.
func (s *Service) ListCatalogs(ctx context.Context) ([]string, error) {
	w, err := s.ensureWarehouse(ctx)
	if err != nil {
		if errors.Is(err, ErrWarehouseNotConfigured) {
			s.logger.Error("missing warehouse credentials",
				"host", s.whCfg.Host != "", "token", s.whCfg.Token != "", "http_path", s.whCfg.HTTPPath != "")
		}
		return nil, err
	}

	catalogs, err := w.ListCatalogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	s.logger.Debug("listed catalogs", "count", len(catalogs))
	return catalogs, nil
}

// ListSchemas lists the schemas of a catalog.
func (s *Service) ListSchemas(ctx context.Context, catalog string) ([]string, error) {
	if catalog == "" {
		return nil, invalid("catalog", "is required")
	}
	w, err := s.ensureWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	schemas, err := w.ListSchemas(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return schemas, nil
}

// ListTables lists the tables of catalog.schema.
func (s *Service) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	if catalog == "" || schema == "" {
		return nil, invalid("schema", "catalog and schema are required")
	}
	w, err := s.ensureWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := w.ListTables(ctx, catalog, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// ListColumns describes a table.
func (s *Service) ListColumns(ctx context.Context, table core.TableRef) ([]core.ColumnInfo, error) {
	if !table.IsComplete() {
		return nil, invalid("table", "catalog, schema and table are required")
	}
	w, err := s.ensureWarehouse(ctx)
	if err != nil {
		return nil, err
	}
	columns, err := w.DescribeTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return columns, nil
}
