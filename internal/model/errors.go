package model

import "sparkify/internal/etlerr"

func fieldError(field string, err error) error {
	return etlerr.Parse("", 0, field, err)
}
