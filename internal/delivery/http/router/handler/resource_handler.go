package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"agency/internal/api"
	deliverycontext "agency/internal/delivery/context"
	"agency/internal/delivery/http/response"
	"agency/internal/domain/entity"
	domainerrors "agency/internal/domain/errors"
	"agency/internal/errors"
	"agency/internal/infra/backend"

	"github.com/labstack/echo/v4"
)

// uploadField is the multipart field carrying a record's image.
const uploadField = "image"

// ListView is the view model of a collection page.
type ListView[T any] struct {
	Items      []T    `json:"items"`
	IsLoading  bool   `json:"isLoading"`
	IsFetching bool   `json:"isFetching"`
	IsError    bool   `json:"isError"`
	Error      string `json:"error,omitempty"`
}

// ConfirmPrompt asks the user to confirm a destructive action. Repeating the
// request with Method on Confirm carries out the action.
type ConfirmPrompt struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Method  string `json:"method"`
	Confirm string `json:"confirm"`
}

// ResourceHandler serves the dashboard views of one collection.
type ResourceHandler[T entity.Record, F Form[T]] struct {
	resource      *api.Resource[T]
	basePath      string
	label         string
	imageRequired bool
	logger        *slog.Logger
}

// NewResourceHandler is the constructor for ResourceHandler.
func NewResourceHandler[T entity.Record, F Form[T]](resource *api.Resource[T], basePath, label string, imageRequired bool, logger *slog.Logger) *ResourceHandler[T, F] {
	return &ResourceHandler[T, F]{
		resource:      resource,
		basePath:      basePath,
		label:         label,
		imageRequired: imageRequired,
		logger:        logger,
	}
}

// Register mounts the collection views under g.
func (h *ResourceHandler[T, F]) Register(g *echo.Group) {
	g.GET(h.basePath, h.List)
	g.POST(h.basePath, h.Create)
	g.GET(h.basePath+"/:id", h.Detail)
	g.POST(h.basePath+"/:id", h.Update)
	g.PUT(h.basePath+"/:id", h.Update)
	g.POST(h.basePath+"/:id/delete", h.Delete)
	g.DELETE(h.basePath+"/:id", h.Delete)
}

func (h *ResourceHandler[T, F]) view(suffix string) string {
	return h.resource.Name() + "." + suffix
}

func (h *ResourceHandler[T, F]) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger)
}

// List renders the collection. ?refetch=1 forces a network read and ?wait=0
// renders the current state without waiting for a read in flight.
func (h *ResourceHandler[T, F]) List(c echo.Context) error {
	ctx := c.Request().Context()

	sub := h.resource.SubscribeAll(ctx)
	defer sub.Unsubscribe()

	if c.QueryParam("refetch") == "1" {
		sub.Refetch()
	}

	res := sub.Current()
	if c.QueryParam("wait") != "0" {
		var err error
		if res, err = sub.Wait(ctx); err != nil {
			return errors.WithStack(err)
		}
	}

	view := ListView[T]{
		Items:      res.Data,
		IsLoading:  res.IsLoading,
		IsFetching: res.IsFetching,
		IsError:    res.IsError,
	}
	if view.Items == nil {
		view.Items = []T{}
	}

	if res.IsError {
		h.log(c).Warn("Collection read failed", slog.String("resource", h.resource.Name()), slog.Any("error", res.Err))
		view.Error = domainerrors.ErrBackendReadFailed.Message()

		return response.ErrorWithData(c, http.StatusBadGateway,
			domainerrors.ErrBackendReadFailed.ErrorCode(),
			domainerrors.ErrBackendReadFailed.Message(),
			"",
			response.Page{View: h.view("list"), Data: view},
		)
	}

	return response.View(c, http.StatusOK, h.view("list"), view)
}

// Detail renders one record.
func (h *ResourceHandler[T, F]) Detail(c echo.Context) error {
	record, err := h.resource.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return readError(err)
	}

	return response.View(c, http.StatusOK, h.view("detail"), record)
}

// Create adds a record from the submitted form.
func (h *ResourceHandler[T, F]) Create(c echo.Context) error {
	form, upload, err := h.bind(c)
	if err != nil {
		return formError(c, err, form)
	}

	if h.imageRequired && upload == nil {
		return formError(c, domainerrors.ErrImageRequired, form)
	}

	created, err := h.resource.Create(c.Request().Context(), form.ToRecord(), upload)
	if err != nil {
		h.log(c).Error("Create failed", slog.String("resource", h.resource.Name()), slog.Any("error", err))

		return formError(c, writeError(err), form)
	}

	h.log(c).Info("Record created", slog.String("resource", h.resource.Name()), slog.String("id", created.RecordID()))

	return response.Success(c, http.StatusCreated, created, h.label+" created successfully")
}

// Update replaces a record from the submitted form. The image is optional.
func (h *ResourceHandler[T, F]) Update(c echo.Context) error {
	id := c.Param("id")

	form, upload, err := h.bind(c)
	if err != nil {
		return formError(c, err, form)
	}

	updated, err := h.resource.Update(c.Request().Context(), id, form.ToRecord(), upload)
	if err != nil {
		h.log(c).Error("Update failed", slog.String("resource", h.resource.Name()), slog.String("id", id), slog.Any("error", err))

		return formError(c, writeError(err), form)
	}

	return response.Success(c, http.StatusOK, updated, h.label+" updated successfully")
}

// Delete removes a record once the user has confirmed with confirm=true.
// Without it nothing is sent to the backend and the prompt echoes the method
// and path of the request with confirm=true added.
func (h *ResourceHandler[T, F]) Delete(c echo.Context) error {
	id := c.Param("id")

	if c.FormValue("confirm") != "true" {
		req := c.Request()
		prompt := ConfirmPrompt{
			ID:      id,
			Message: domainerrors.ErrConfirmationRequired.Message(),
			Method:  req.Method,
			Confirm: req.URL.Path + "?confirm=true",
		}

		return response.ErrorWithData(c, http.StatusPreconditionRequired,
			domainerrors.ErrConfirmationRequired.ErrorCode(),
			domainerrors.ErrConfirmationRequired.Message(),
			"",
			prompt,
		)
	}

	if err := h.resource.Delete(c.Request().Context(), id); err != nil {
		h.log(c).Error("Delete failed", slog.String("resource", h.resource.Name()), slog.String("id", id), slog.Any("error", err))
		appErr := writeError(err)

		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	h.log(c).Info("Record deleted", slog.String("resource", h.resource.Name()), slog.String("id", id))

	return response.Success(c, http.StatusOK, map[string]string{"id": id}, h.label+" deleted successfully")
}

func (h *ResourceHandler[T, F]) bind(c echo.Context) (F, *backend.Upload, error) {
	var form F
	if err := c.Bind(&form); err != nil {
		return form, nil, domainerrors.ErrValidationFailed.WithDetails("the form could not be read")
	}
	if err := c.Validate(form); err != nil {
		return form, nil, err
	}

	upload, err := readUpload(c)
	if err != nil {
		return form, nil, err
	}

	return form, upload, nil
}

// readUpload returns the attached image, or nil when none was sent.
func readUpload(c echo.Context) (*backend.Upload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}

	fh, err := c.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read uploaded image")
	}

	file, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open uploaded image")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read uploaded image")
	}
	if len(content) == 0 {
		return nil, nil
	}

	return &backend.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     content,
	}, nil
}

// formError answers a failed submission with the form echoed back.
func formError(c echo.Context, err error, form any) error {
	appErr, ok := errors.AsType[domainerrors.AppError](err)
	if !ok {
		return errors.WithStack(err)
	}

	return response.ErrorWithData(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details(), form)
}

// writeError maps a failed backend write to the alert shown to the user.
func writeError(err error) domainerrors.AppError {
	if httpErr, ok := errors.AsType[*backend.HTTPError](err); ok {
		if httpErr.StatusCode == http.StatusNotFound {
			return domainerrors.ErrNotFound
		}

		return domainerrors.ErrBackendWriteFailed.WithDetails(httpErr.Message)
	}

	return domainerrors.ErrBackendWriteFailed
}

// readError maps a failed backend read to the inline error of a view.
func readError(err error) error {
	if backend.IsStatus(err, http.StatusNotFound) {
		return errors.WithStack(domainerrors.ErrNotFound)
	}
	if _, ok := errors.AsType[domainerrors.AppError](err); ok {
		return err
	}

	return errors.Wrap(domainerrors.ErrBackendReadFailed, err.Error())
}
