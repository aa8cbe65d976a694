// Package ocsf provides the class_uid lookup table the columnar writer
// uses to route events to the right schema and output directory.
//
// OCSF (Open Cybersecurity Schema Framework) encodes a category into the
// thousands digit of every class_uid: category = (class_uid % 10000) /
// 1000. The upstream ocsf-schema project generates this table at build
// time from its categories.json and events/<category>/*.json definitions;
// that code-generation step is out of scope here; the table below is a
// hand-maintained subset covering the classes StrIEM ships schemas for.
package ocsf
