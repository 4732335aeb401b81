// Package build is the docsite build pipeline.
//
// A build runs named stages in order: load the site configuration and the
// sidebar declaration, discover content, validate the sidebar, generate and
// validate the route table, check links, build search indexes, write the
// artifacts and record the build manifest. Each stage is timed and its
// outcome classified as success, warning, fatal, canceled or skipped. The
// first fatal or canceled stage aborts the build.
//
// All entry points (build, validate, serve) go through Service.Run.
package build
