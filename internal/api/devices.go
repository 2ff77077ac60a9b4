package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/device-registry/internal/device"
)

// createDeviceResponse is the 201 body for a successful create.
type createDeviceResponse struct {
	Message string         `json:"message"`
	Device  *device.Device `json:"device"`
}

// handleListDevices returns every device, newest first, as a bare JSON array.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.ListDevices(r.Context())
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, fmt.Sprintf("Failed to fetch devices: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device by its device_id.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDParam(r)

	dev, err := s.registry.GetDevice(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, notFoundDetail(deviceID))
			return
		}
		s.logger.Error("fetching device failed", "device_id", deviceID, "error", err)
		writeInternalError(w, fmt.Sprintf("Failed to fetch device: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice creates a device from a CreateInput body.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var in device.CreateInput
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&in); err != nil {
		s.writeDecodeError(w, err)
		return
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeDecodeError(w, err)
			return
		}
		writeValidationError(w, "Request body is not valid JSON", []device.FieldError{
			{Field: "body", Message: "unexpected data after JSON object"},
		})
		return
	}

	dev, err := s.registry.CreateDevice(r.Context(), in)
	if err != nil {
		var verr *device.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, "Validation failed", verr.Fields)
		case errors.Is(err, device.ErrInvalidDevice):
			writeValidationError(w, err.Error(), nil)
		case errors.Is(err, device.ErrDeviceExists):
			writeError(w, http.StatusConflict, ErrCodeConflict,
				fmt.Sprintf("Device with device_id '%s' already exists", in.DeviceID))
		default:
			s.logger.Error("creating device failed", "device_id", in.DeviceID, "error", err)
			writeInternalError(w, fmt.Sprintf("Failed to create device: %v", err))
		}
		return
	}

	writeJSON(w, http.StatusCreated, createDeviceResponse{
		Message: "Device created successfully",
		Device:  dev,
	})
}

// handleDeleteDevice removes a device and answers 204 with no body.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceIDParam(r)

	if err := s.registry.DeleteDevice(r.Context(), deviceID); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, notFoundDetail(deviceID))
			return
		}
		s.logger.Error("deleting device failed", "device_id", deviceID, "error", err)
		writeInternalError(w, fmt.Sprintf("Failed to delete device: %v", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeDecodeError maps a JSON decoding failure to 422 (or 413 for an
// oversized body).
func (s *Server) writeDecodeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, io.EOF):
		writeValidationError(w, "Request body is required", []device.FieldError{
			{Field: "body", Message: "field required"},
		})
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeValidationError(w, "Request body is not a valid device", []device.FieldError{
			{Field: field, Message: "must be " + jsonTypeName(typeErr.Type.String())},
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		writeValidationError(w, "Request body is not valid JSON", []device.FieldError{
			{Field: "body", Message: err.Error()},
		})
	default:
		writeValidationError(w, "Request body could not be decoded", []device.FieldError{
			{Field: "body", Message: err.Error()},
		})
	}
}

// jsonTypeName renders a Go target type as the JSON type a client should send.
func jsonTypeName(goType string) string {
	switch strings.TrimPrefix(goType, "*") {
	case "string":
		return "a string"
	case "device.CreateInput":
		return "an object"
	default:
		return "a " + goType
	}
}

// deviceIDParam returns the {device_id} path parameter, percent-decoded.
func deviceIDParam(r *http.Request) string {
	id := chi.URLParam(r, "device_id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(id); err == nil {
			return unescaped
		}
	}
	return id
}

func notFoundDetail(deviceID string) string {
	return fmt.Sprintf("Device with device_id '%s' not found", deviceID)
}
