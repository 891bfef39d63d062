package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"snapindex/feature"
	"snapindex/index"
	ownIo "snapindex/io"
	"snapindex/parser"
	"strconv"
	"sync"
)

const maxLengthOfPrintedQuery = 10000

type ErrorResponse struct {
	Error   string `json:"error"`
	Details error  `json:"details"`
}

func NewErrorResponse(message string, err error) ErrorResponse {
	return ErrorResponse{
		Error:   message,
		Details: err,
	}
}

type IndexStatus struct {
	State            string      `json:"state"`
	CachedGeometries int         `json:"cachedGeometries"`
	Features         int         `json:"features"`
	Extent           *[4]float64 `json:"extent"`
}

type FeatureResponse struct {
	ID feature.ID `json:"id"`
}

// Server exposes one point locator and its editable source over HTTP. All handlers touching the locator or the
// source hold the lock, which must be the same lock used by every other writer of the source (e.g. a file watcher).
type Server struct {
	locator *index.PointLocator
	source  feature.EditableSource
	lock    sync.Locker
	router  *mux.Router
}

func NewServer(locator *index.PointLocator, source feature.EditableSource, lock sync.Locker) *Server {
	s := &Server{
		locator: locator,
		source:  source,
		lock:    lock,
	}
	s.router = s.initRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func StartServer(port string, server *Server) error {
	sigolo.Infof("Start server on port %s", port)
	return http.ListenAndServe(":"+port, server.Handler())
}

func (s *Server) initRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/index", s.handleIndexStatus).Methods(http.MethodGet)
	r.HandleFunc("/index/build", s.handleIndexBuild).Methods(http.MethodPost)
	r.HandleFunc("/index", s.handleIndexInvalidate).Methods(http.MethodDelete)
	r.HandleFunc("/features", s.handleFeatureAdd).Methods(http.MethodPost)
	r.HandleFunc("/features/{id:[0-9]+}", s.handleFeatureChange).Methods(http.MethodPut)
	r.HandleFunc("/features/{id:[0-9]+}", s.handleFeatureDelete).Methods(http.MethodDelete)
	r.Handle("/metrics", metricsHandler()).Methods(http.MethodGet)

	return r
}

func (s *Server) handleQuery(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Access-Control-Allow-Origin", "*")

	queryBytes, err := io.ReadAll(request.Body)
	if err != nil {
		sigolo.Errorf("Error reding HTTP body of request to '/query': %+v", err)
		writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse("Error reading HTTP body.", nil))
		return
	}

	queryString := string(queryBytes)

	trimmedQueryString := queryString
	queryRunes := []rune(queryString)
	if len(queryRunes) > maxLengthOfPrintedQuery {
		trimmedQueryString = string(queryRunes[:maxLengthOfPrintedQuery]) + "... [truncated]"
	}
	sigolo.Infof("Query:\n%s", trimmedQueryString)

	queryObj, err := parser.ParseQueryString(queryString)
	if err != nil {
		sigolo.Errorf("Error parsing query: %+v", err)
		writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(fmt.Sprintf("Error parsing query: %s", err.Error()), err))
		return
	}

	s.lock.Lock()
	results := queryObj.Execute(s.locator)
	s.lock.Unlock()

	matchCount := 0
	for i, probe := range queryObj.GetProbes() {
		ProbesTotal.WithLabelValues(probe.GetKind().String()).Inc()
		matchCount += len(results[i])
	}
	MatchesTotal.Add(float64(matchCount))
	sigolo.Debugf("Found %d matches", matchCount)

	buffer := &bytes.Buffer{}
	err = ownIo.WriteMatchesAsGeoJson(results, buffer)
	if err != nil {
		sigolo.Errorf("Error writing query result: %+v", err)
		writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse(fmt.Sprintf("Error writing query result: %s", err.Error()), err))
		return
	}

	writer.Header().Set("Content-Type", "application/geo+json")
	_, err = writer.Write(buffer.Bytes())
	if err != nil {
		sigolo.Errorf("Error writing query result: %+v", err)
	}
}

func (s *Server) handleIndexStatus(writer http.ResponseWriter, request *http.Request) {
	s.lock.Lock()
	status := s.indexStatus()
	s.lock.Unlock()

	writeJsonResponse(writer, http.StatusOK, status)
}

func (s *Server) handleIndexBuild(writer http.ResponseWriter, request *http.Request) {
	maxFeatures := -1
	if maxParam := request.URL.Query().Get("max"); maxParam != "" {
		var err error
		maxFeatures, err = strconv.Atoi(maxParam)
		if err != nil {
			writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(fmt.Sprintf("Invalid maximum number of features '%s'", maxParam), nil))
			return
		}
	}

	s.lock.Lock()
	built := s.locator.Build(maxFeatures)
	status := s.indexStatus()
	s.lock.Unlock()

	if !built {
		IndexBuildsTotal.WithLabelValues("failed").Inc()
		sigolo.Errorf("Index has not been built with maximum of %d features", maxFeatures)
		writeErrorResponse(writer, http.StatusConflict, NewErrorResponse(fmt.Sprintf("Index not built: source has more than %d indexable features", maxFeatures), nil))
		return
	}

	IndexBuildsTotal.WithLabelValues("built").Inc()
	writeJsonResponse(writer, http.StatusOK, status)
}

func (s *Server) handleIndexInvalidate(writer http.ResponseWriter, request *http.Request) {
	s.lock.Lock()
	s.locator.Invalidate()
	status := s.indexStatus()
	s.lock.Unlock()

	writeJsonResponse(writer, http.StatusOK, status)
}

// indexStatus must be called while holding the lock.
func (s *Server) indexStatus() IndexStatus {
	status := IndexStatus{
		State:            s.locator.State().String(),
		CachedGeometries: s.locator.CachedGeometryCount(),
		Features:         s.source.Count(),
	}
	if extent := s.locator.Extent(); extent != nil {
		status.Extent = &[4]float64{extent.Min.X(), extent.Min.Y(), extent.Max.X(), extent.Max.Y()}
	}
	return status
}

func (s *Server) handleFeatureAdd(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse("Error reading HTTP body.", nil))
		return
	}

	geometry, properties, err := ownIo.ReadGeoJsonFeature(body)
	if err != nil {
		writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(fmt.Sprintf("Invalid GeoJSON feature: %s", err.Error()), nil))
		return
	}

	s.lock.Lock()
	id := s.source.NextID()
	err = s.source.Add(&feature.Feature{
		ID:         id,
		Geometry:   geometry,
		Properties: properties,
	})
	s.lock.Unlock()

	if err != nil {
		sigolo.Errorf("Error adding feature: %+v", err)
		writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse(fmt.Sprintf("Error adding feature: %s", err.Error()), nil))
		return
	}

	FeatureEditsTotal.WithLabelValues("add").Inc()
	writeJsonResponse(writer, http.StatusCreated, FeatureResponse{ID: id})
}

func (s *Server) handleFeatureChange(writer http.ResponseWriter, request *http.Request) {
	id, err := featureIDFromPath(request)
	if err != nil {
		writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(err.Error(), nil))
		return
	}

	body, err := io.ReadAll(request.Body)
	if err != nil {
		writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse("Error reading HTTP body.", nil))
		return
	}

	geometry, err := ownIo.ReadGeoJsonGeometry(body)
	if err != nil {
		writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(fmt.Sprintf("Invalid GeoJSON geometry: %s", err.Error()), nil))
		return
	}

	s.lock.Lock()
	err = s.source.ChangeGeometry(id, geometry)
	s.lock.Unlock()

	if err != nil {
		writeEditErrorResponse(writer, "changing geometry of", id, err)
		return
	}

	FeatureEditsTotal.WithLabelValues("change").Inc()
	writeJsonResponse(writer, http.StatusOK, FeatureResponse{ID: id})
}

func (s *Server) handleFeatureDelete(writer http.ResponseWriter, request *http.Request) {
	id, err := featureIDFromPath(request)
	if err != nil {
		writeErrorResponse(writer, http.StatusBadRequest, NewErrorResponse(err.Error(), nil))
		return
	}

	s.lock.Lock()
	err = s.source.Delete(id)
	s.lock.Unlock()

	if err != nil {
		writeEditErrorResponse(writer, "deleting", id, err)
		return
	}

	FeatureEditsTotal.WithLabelValues("delete").Inc()
	writer.WriteHeader(http.StatusNoContent)
}

func featureIDFromPath(request *http.Request) (feature.ID, error) {
	idString := mux.Vars(request)["id"]
	id, err := strconv.ParseUint(idString, 10, 64)
	if err != nil {
		return 0, errors.Errorf("Invalid feature ID '%s'", idString)
	}
	return feature.ID(id), nil
}

func writeEditErrorResponse(writer http.ResponseWriter, operation string, id feature.ID, err error) {
	if errors.Is(err, feature.ErrFeatureNotFound) {
		writeErrorResponse(writer, http.StatusNotFound, NewErrorResponse(fmt.Sprintf("Feature %d not found", id), nil))
		return
	}

	sigolo.Errorf("Error %s feature %d: %+v", operation, id, err)
	writeErrorResponse(writer, http.StatusInternalServerError, NewErrorResponse(fmt.Sprintf("Error %s feature %d: %s", operation, id, err.Error()), nil))
}

func writeErrorResponse(writer http.ResponseWriter, status int, response ErrorResponse) {
	writeJsonResponse(writer, status, response)
}

func writeJsonResponse(writer http.ResponseWriter, status int, value any) {
	responseBytes, err := json.Marshal(value)
	if err != nil {
		sigolo.Errorf("Error creating and marshalling response object: %+v", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, err = writer.Write(responseBytes)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}
