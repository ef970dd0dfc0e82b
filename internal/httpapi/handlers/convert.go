package handlers

import (
	"net/http"

	"convertd/internal/conversion"
	"convertd/internal/httpkit"
	"convertd/internal/pkg/errors"
)

// Convert handles POST /convert. The upload is the multipart field "file";
// to_format and from_format may come from the query string or the form.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(h.multipartMemory); err != nil {
		return errors.WrapWithCode(err, errors.CodeValidation, "handlers.convert", "invalid multipart form").
			WithField("field", "file")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return errors.ValidationField("file", "file is required")
	}
	defer file.Close()

	art, err := h.converter.Convert(r.Context(), conversion.Request{
		Upload: conversion.Upload{
			Content:  file,
			Filename: header.Filename,
		},
		ToFormat:   r.FormValue("to_format"),
		FromFormat: r.FormValue("from_format"),
	})
	if err != nil {
		return err
	}

	httpkit.WriteAttachment(w, art.ContentType, art.Filename, art.Data)
	return nil
}
