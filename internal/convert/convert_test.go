package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SolarisQuests/documentanalysis/internal/common"
)

type stubRunner struct {
	called   bool
	name     string
	args     []string
	writeOut string // when set, the stub creates this file like soffice would
	err      error
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.called = true
	r.name = name
	r.args = args
	if r.err != nil {
		return nil, []byte("soffice: conversion error"), r.err
	}
	if r.writeOut != "" {
		if err := os.WriteFile(r.writeOut, []byte("%PDF-1.4"), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func newTestConverter(r Runner) *Converter {
	c := NewConverter(Config{Soffice: "soffice"}, nil)
	c.runner = r
	c.validate = func(string) error { return nil }
	return c
}

func TestToPDFIdentityForPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	runner := &stubRunner{}
	c := newTestConverter(runner)

	out, err := c.ToPDF(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, out)
	assert.False(t, runner.called, "pdf input must not invoke the converter")
}

func TestToPDFConvertsDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx bytes"), 0o644))

	runner := &stubRunner{writeOut: filepath.Join(dir, "sample.pdf")}
	c := newTestConverter(runner)

	out, err := c.ToPDF(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sample.pdf"), out)
	assert.True(t, runner.called)
	assert.Equal(t, "soffice", runner.name)
	assert.Contains(t, runner.args, "--headless")
	assert.Contains(t, runner.args, path)
}

func TestToPDFFailsWhenOutputMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx bytes"), 0o644))

	// Runner succeeds but never writes the expected output file.
	c := newTestConverter(&stubRunner{})

	_, err := c.ToPDF(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output file not found")
	assert.True(t, errors.Is(err, common.ErrConversion))
}

func TestToPDFFailsWhenRunnerFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.doc")
	require.NoError(t, os.WriteFile(path, []byte("doc bytes"), 0o644))

	c := newTestConverter(&stubRunner{err: errors.New("exit status 1")})

	_, err := c.ToPDF(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConversion))
}

func TestToPDFFailsWhenOutputInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx bytes"), 0o644))

	runner := &stubRunner{writeOut: filepath.Join(dir, "sample.pdf")}
	c := newTestConverter(runner)
	c.validate = func(string) error { return errors.New("xref table corrupt") }

	_, err := c.ToPDF(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConversion))
}

func TestToPDFRejectsUnsupportedExtension(t *testing.T) {
	c := newTestConverter(&stubRunner{})

	_, err := c.ToPDF(context.Background(), "/tmp/sample.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
}
