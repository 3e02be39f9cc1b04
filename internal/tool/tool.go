//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

// Package tool provides internal helpers for building tool declarations.
package tool

import (
	"reflect"
	"strings"

	"trpc.group/trpc-go/trpc-dataspace-go/tool"
)

// GenerateJSONSchema generates a basic JSON schema from a reflect.Type.
func GenerateJSONSchema(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: "object"}
	}
	if t.Kind() == reflect.Ptr {
		return GenerateJSONSchema(t.Elem())
	}
	if t.Kind() != reflect.Struct {
		return GenerateFieldSchema(t)
	}

	schema := &tool.Schema{Type: "object"}
	properties := map[string]*tool.Schema{}
	required := make([]string, 0)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldName, isOmitEmpty, skip := parseJSONTag(field)
		if skip {
			continue
		}
		fieldSchema := GenerateFieldSchema(field.Type)
		if description := parseSchemaTag(field); description != "" {
			fieldSchema.Description = description
		}
		properties[fieldName] = fieldSchema
		if field.Type.Kind() != reflect.Ptr && !isOmitEmpty {
			required = append(required, fieldName)
		}
	}

	schema.Properties = properties
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

// GenerateFieldSchema generates schema for a specific field type.
func GenerateFieldSchema(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.String:
		return &tool.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: "number"}
	case reflect.Bool:
		return &tool.Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{
			Type:  "array",
			Items: GenerateFieldSchema(t.Elem()),
		}
	case reflect.Map:
		return &tool.Schema{
			Type:                 "object",
			AdditionalProperties: GenerateFieldSchema(t.Elem()),
		}
	case reflect.Ptr:
		elemSchema := GenerateFieldSchema(t.Elem())
		// Pointers are nullable.
		elemSchema.Type = elemSchema.Type + ",null"
		return elemSchema
	case reflect.Struct:
		nested := &tool.Schema{
			Type:       "object",
			Properties: make(map[string]*tool.Schema),
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fieldName, _, skip := parseJSONTag(field)
			if skip {
				continue
			}
			fieldSchema := GenerateFieldSchema(field.Type)
			if description := parseSchemaTag(field); description != "" {
				fieldSchema.Description = description
			}
			nested.Properties[fieldName] = fieldSchema
		}
		return nested
	default:
		return &tool.Schema{Type: "object"}
	}
}

// parseSchemaTag extracts the description from a jsonschema struct tag.
// The description runs to the end of the tag, so it may contain commas.
func parseSchemaTag(field reflect.StructField) string {
	tag := field.Tag.Get("jsonschema")
	if idx := strings.Index(tag, "description="); idx != -1 {
		return tag[idx+len("description="):]
	}
	return ""
}

// parseJSONTag resolves the field's JSON name, omitempty flag and whether
// the field is excluded from serialization.
func parseJSONTag(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "-" {
		return "", false, true
	}
	name = field.Name
	if jsonTag == "" {
		return name, false, false
	}
	if commaIdx := strings.Index(jsonTag, ","); commaIdx != -1 {
		if jsonTag[:commaIdx] != "" {
			name = jsonTag[:commaIdx]
		}
		omitEmpty = strings.Contains(jsonTag[commaIdx:], "omitempty")
		return name, omitEmpty, false
	}
	return jsonTag, false, false
}
