package controller

import (
	"strconv"
	"strings"
	"time"

	"campuscomplaint/internal/backend/repository"
	"campuscomplaint/internal/backend/service"
	pkgerrors "campuscomplaint/pkg/errors"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	fromDateLayout  = "2006-01-02"
)

func pageParams(c *gin.Context) (repository.PageRequest, error) {
	page, err := intQuery(c, "page", 0)
	if err != nil || page < 0 {
		return repository.PageRequest{}, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "page")
	}
	size, err := intQuery(c, "size", defaultPageSize)
	if err != nil || size <= 0 {
		return repository.PageRequest{}, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "size")
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return repository.PageRequest{Page: page, Size: size}, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func listFilter(c *gin.Context) (service.ListFilter, error) {
	filter := service.ListFilter{Status: strings.ToUpper(strings.TrimSpace(c.Query("status")))}
	if raw := strings.TrimSpace(c.Query("fromDate")); raw != "" {
		from, err := time.ParseInLocation(fromDateLayout, raw, time.Local)
		if err != nil {
			return service.ListFilter{}, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "fromDate")
		}
		filter.FromDate = from
	}
	return filter, nil
}

func mapFilter(c *gin.Context) (service.MapFilter, error) {
	filter := service.MapFilter{Status: strings.ToUpper(strings.TrimSpace(c.Query("status")))}
	for _, item := range []struct {
		key string
		dst **float64
	}{{"lat", &filter.Lat}, {"lng", &filter.Lng}, {"radius", &filter.Radius}} {
		raw := strings.TrimSpace(c.Query(item.key))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.MapFilter{}, pkgerrors.ValidationError(pkgerrors.InvalidFormat, item.key)
		}
		*item.dst = &value
	}
	return filter, nil
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.ValidationError(pkgerrors.InvalidFormat, "id")
	}
	return id, nil
}
