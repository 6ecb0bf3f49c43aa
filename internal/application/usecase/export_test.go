package usecase

import "time"

// SetNow fija el reloj del caso de uso en tests.
func (uc *ReportUseCase) SetNow(now func() time.Time) { uc.now = now }

// SetNow fija el reloj del borrado lógico en tests.
func (uc *CategoryUseCase) SetNow(now func() time.Time) { uc.now = now }
