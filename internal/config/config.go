package config

import (
	"github.com/esm2cjs/esm2cjs/internal/esm_to_cjs"
	"github.com/esm2cjs/esm2cjs/internal/js_printer"
)

type Format uint8

const (
	// Leave import and export syntax alone. The input is only parsed and
	// printed again.
	FormatPreserve Format = iota

	// Rewrite import and export syntax to "require" and "exports":
	//
	//   import {a} from "m";     var $csb__m = require("m");
	//   export const b = a;  =>  const b = (0, $csb__m.a);
	//                            exports.b = b;
	//
	FormatCommonJS
)

func (f Format) String() string {
	switch f {
	case FormatPreserve:
		return "esm"
	case FormatCommonJS:
		return "cjs"
	}
	return ""
}

type Loader uint8

const (
	// JavaScript module source text
	LoaderJS Loader = iota

	// An ESTree JSON document
	LoaderESTree
)

type Output uint8

const (
	OutputCode Output = iota
	OutputESTree
)

type StdinInfo struct {
	Contents   string
	SourceFile string
}

// Options is the validated form of everything that controls one transform.
// The zero value parses JavaScript source and prints it back without
// rewriting anything.
type Options struct {
	OutputFormat Format
	Loader       Loader
	Output       Output

	Indent         string
	LineEnd        string
	Comments       bool
	PrivateMembers js_printer.PrivateMemberMode

	NonLiteralSpecifiers esm_to_cjs.NonLiteralPolicy

	// If true, the "require" arguments of the output are collected
	CollectDependencies bool

	Stdin *StdinInfo
}

// PrinterOptions returns the options for printing the final tree.
func (options *Options) PrinterOptions() js_printer.Options {
	return js_printer.Options{
		Indent:         options.Indent,
		LineEnd:        options.LineEnd,
		Comments:       options.Comments,
		PrivateMembers: options.PrivateMembers,
	}
}
