package table

import "github.com/Abraxas-365/userdesk/pkg/errx"

var ErrRegistry = errx.NewRegistry("TABLE")

var (
	ErrUnknownColumn      = ErrRegistry.Register("UNKNOWN_COLUMN", errx.TypeValidation, 0, "Unknown column")
	ErrUnsortableColumn   = ErrRegistry.Register("UNSORTABLE_COLUMN", errx.TypeValidation, 0, "Column cannot be sorted")
	ErrInvalidSorting     = ErrRegistry.Register("INVALID_SORTING", errx.TypeValidation, 0, "Invalid sorting")
	ErrInvalidSelectValue = ErrRegistry.Register("INVALID_SELECT_VALUE", errx.TypeValidation, 0, "Selection value must be true, false or indeterminate")
)
