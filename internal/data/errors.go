package data

import "errors"

var (
	// SchemaNotFoundErr is returned when the schema file of a dataset does not exist.
	SchemaNotFoundErr = errors.New("schema not found")
	// DataFileNotFoundErr is returned when the data file of a dataset does not exist.
	DataFileNotFoundErr = errors.New("data file not found")
	// DataReadErr is returned on any i/o failure while reading the schema or data file.
	DataReadErr = errors.New("could not read data")
	// CorruptRowErr is returned when a schema or data line does not match the expected layout.
	CorruptRowErr = errors.New("corrupt row")
	// NotLoadedErr is returned when normalizing a dataset without a schema.
	NotLoadedErr = errors.New("dataset not loaded")
)
