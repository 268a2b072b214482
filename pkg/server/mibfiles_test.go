package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
)

const ifMIB = `IF-MIB DEFINITIONS ::= BEGIN
IMPORTS mib-2 FROM SNMPv2-SMI;
END
`

func (s *ServerTestSuite) upload(filename, content string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = part.Write([]byte(content))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/mib-files/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	return rec
}

// TestUploadMIB tests upload, listing, download and delete.
func (s *ServerTestSuite) TestUploadMIB() {
	rec := s.upload("IF-MIB.mib", ifMIB)
	s.Equal(http.StatusCreated, rec.Code)

	response := s.decode(rec)
	s.Equal(true, response["success"])
	files := response["files"].([]interface{})
	s.Require().Len(files, 1)
	file := files[0].(map[string]interface{})
	s.Equal("IF-MIB", file["module"])
	id := strconv.FormatInt(int64(file["id"].(float64)), 10)

	rec = s.upload("copy.mib", ifMIB)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/mib-files", nil)
	s.Len(s.decode(rec)["data"], 1)

	rec = s.do(http.MethodGet, "/api/mib-files/"+id, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("IF-MIB.mib", s.decode(rec)["data"].(map[string]interface{})["name"])

	rec = s.do(http.MethodGet, "/api/mib-files/"+id+"/download", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(ifMIB, rec.Body.String())
	s.Contains(rec.Header().Get("Content-Disposition"), "IF-MIB.mib")

	rec = s.do(http.MethodDelete, "/api/mib-files/"+id, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/mib-files/"+id, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

// TestUploadMIBErrors tests the upload rejections.
func (s *ServerTestSuite) TestUploadMIBErrors() {
	req := httptest.NewRequest(http.MethodPost, "/api/mib-files/upload", nil)
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("No file provided", s.decode(rec)["error"])

	rec = s.upload("notes.pdf", "%PDF-1.4")
	s.Equal(http.StatusBadRequest, rec.Code)
}

// TestMIBBadID tests id validation.
func (s *ServerTestSuite) TestMIBBadID() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/mib-files/abc", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodDelete, "/api/mib-files/0", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/mib-files/99/download", nil).Code)
}
