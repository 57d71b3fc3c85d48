package main

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// auditStores fans a qualification decision out to every configured store.
type auditStores []driven.AuditStore

func (s auditStores) RecordQualification(ctx context.Context, q model.Qualification) error {
	var errs []error
	for _, store := range s {
		if err := store.RecordQualification(ctx, q); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
