package utils

import (
	"context"
	"errors"
	"fmt"
)

// ApplyThenConfirm applique un changement local, appelle l'opération durable
// puis annule le changement local si celle-ci échoue. L'erreur retournée
// contient l'erreur de confirmation et, le cas échéant, celle du rollback.
func ApplyThenConfirm(ctx context.Context, apply, confirm, rollback func(context.Context) error) error {
	if err := apply(ctx); err != nil {
		return fmt.Errorf("application: %w", err)
	}

	if err := confirm(ctx); err != nil {
		if rbErr := rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	return nil
}
