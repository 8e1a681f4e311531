package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/object"
	"github.com/johnbenac/graphdown/internal/refs"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

// Build assembles the whole snapshot into one graph. Classification and
// registration errors are collected, not fatal: a colliding declared id
// drops the later file (sorted path order) and processing continues so
// every duplicate is reported.
func Build(snap snapshot.Snapshot) (*Graph, apperr.List) {
	d := object.Discover(snap)
	var errs apperr.List
	errs.Add(d.Errors...)

	objs := d.Objects()
	sort.Slice(objs, func(i, j int) bool { return objs[i].File < objs[j].File })

	g := &Graph{
		nodes:      make(map[string]*Node),
		byIdentity: make(map[string]string),
		types:      make(map[string]*TypeDef),
		outgoing:   make(map[string]map[string]struct{}),
		incoming:   make(map[string]map[string]struct{}),
	}

	for _, obj := range objs {
		var def *TypeDef
		// Dataset envelopes classify as type objects but declare no
		// record schema; only derived "type" nodes enter the type table.
		if obj.Kind == object.KindType && kindFor(obj) == "type" {
			parsed, defErrs := ParseTypeDef(obj)
			errs.Add(defErrs...)
			if parsed != nil {
				if prev, dup := g.types[parsed.RecordTypeID]; dup {
					errs.Add(apperr.New(apperr.CodeDuplicateRecordTypeID, obj.File,
						"recordTypeId %q already declared by %s", parsed.RecordTypeID, prev.File))
				} else {
					g.types[parsed.RecordTypeID] = parsed
					def = parsed
				}
			}
		}

		id := obj.DeclaredID()
		if id == "" {
			continue
		}
		if prev, dup := g.nodes[id]; dup {
			errs.Add(apperr.New(apperr.CodeDuplicateID, obj.File,
				"id %q already declared by %s", id, prev.File))
			continue
		}
		n := newNode(obj)
		g.nodes[id] = n
		g.byIdentity[obj.Identity()] = id
		if def != nil {
			def.NodeID = id
		}
	}

	for id, n := range g.nodes {
		for _, target := range refs.Extract(n.Fields, n.Body, n.ID, n.Identity()) {
			tn, ok := g.Resolve(target)
			if !ok || tn.ID == id {
				continue
			}
			if g.outgoing[id] == nil {
				g.outgoing[id] = make(map[string]struct{})
			}
			if g.incoming[tn.ID] == nil {
				g.incoming[tn.ID] = make(map[string]struct{})
			}
			g.outgoing[id][tn.ID] = struct{}{}
			g.incoming[tn.ID][id] = struct{}{}
		}
	}

	return g, errs
}

func newNode(obj object.Object) *Node {
	return &Node{
		ID:       obj.DeclaredID(),
		Kind:     kindFor(obj),
		File:     obj.File,
		TypeID:   obj.TypeID,
		RecordID: obj.RecordID,
		Fields:   obj.Fields,
		Body:     obj.Body,
		Created:  fieldTime(obj.Fields["created"]),
		Updated:  fieldTime(obj.Fields["updated"]),
	}
}

// kindFor derives the node kind from the directory convention, falling
// back to the classifier kind for objects living outside it.
func kindFor(obj object.Object) string {
	switch {
	case strings.HasPrefix(obj.File, "datasets/"):
		return "dataset"
	case strings.HasPrefix(obj.File, "types/"):
		return "type"
	case strings.HasPrefix(obj.File, "records/"):
		return "record"
	default:
		return obj.Kind.String()
	}
}

func fieldTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// ParseTypeDef extracts the schema a type object declares. Shape
// violations are collected per aspect so one bad component does not hide
// the rest; a nil TypeDef is returned only when recordTypeId itself is
// unusable.
func ParseTypeDef(obj object.Object) (*TypeDef, apperr.List) {
	var errs apperr.List

	raw, ok := obj.Fields["recordTypeId"]
	if !ok {
		errs.Add(apperr.New(apperr.CodeRequiredFieldMissing, obj.File,
			"type object must declare fields.recordTypeId"))
		return nil, errs
	}
	rtid, isStr := raw.(string)
	if !isStr || !object.IsIdentifier(rtid) || rtid == object.ReservedTypeID {
		errs.Add(apperr.New(apperr.CodeRecordTypeIDInvalid, obj.File,
			"recordTypeId %v does not satisfy the identifier grammar", raw))
		return nil, errs
	}

	def := &TypeDef{RecordTypeID: rtid, File: obj.File}

	if rawDisplay, ok := obj.Fields["displayFields"].([]any); ok {
		for _, item := range rawDisplay {
			if s, isStr := item.(string); isStr {
				def.DisplayFields = append(def.DisplayFields, s)
			}
		}
	}

	if rawDefs, present := obj.Fields["fieldDefs"]; present {
		defs, errsHere := parseFieldDefs(obj.File, rawDefs)
		errs.Add(errsHere...)
		def.FieldDefs = defs
	}

	if rawComp, present := obj.Fields["composition"]; present {
		rules, errsHere := parseComposition(obj.File, rawComp)
		errs.Add(errsHere...)
		def.Composition = rules
	}

	return def, errs
}

func parseFieldDefs(file string, raw any) (map[string]FieldDef, apperr.List) {
	var errs apperr.List
	m, ok := raw.(map[string]any)
	if !ok {
		errs.Add(apperr.New(apperr.CodeDocumentInvalid, file, "fieldDefs must be a mapping"))
		return nil, errs
	}
	out := make(map[string]FieldDef, len(m))
	for _, name := range sortedKeys(m) {
		entry, ok := m[name].(map[string]any)
		if !ok {
			errs.Add(apperr.New(apperr.CodeDocumentInvalid, file,
				"fieldDefs.%s must be a mapping", name))
			continue
		}
		fd := FieldDef{}
		if rawReq, present := entry["required"]; present {
			req, isBool := rawReq.(bool)
			if !isBool {
				errs.Add(apperr.New(apperr.CodeDocumentInvalid, file,
					"fieldDefs.%s.required must be a boolean", name))
				continue
			}
			fd.Required = req
		}
		out[name] = fd
	}
	return out, errs
}

func parseComposition(file string, raw any) ([]CompositionRule, apperr.List) {
	var errs apperr.List
	m, ok := raw.(map[string]any)
	if !ok {
		errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
			"composition must be a mapping of component name to requirement"))
		return nil, errs
	}

	var rules []CompositionRule
	for _, name := range sortedKeys(m) {
		entry, ok := m[name].(map[string]any)
		if !ok {
			errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
				"composition.%s must be a mapping", name))
			continue
		}
		bad := false
		for key := range entry {
			if key != "recordTypeId" && key != "min" && key != "max" {
				errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
					"composition.%s has unexpected key %q", name, key))
				bad = true
			}
		}
		rtid, isStr := entry["recordTypeId"].(string)
		if !isStr || !object.IsIdentifier(rtid) {
			errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
				"composition.%s.recordTypeId must be a valid type identifier", name))
			bad = true
		}
		min, okMin := asInt(entry["min"])
		if !okMin || min < 0 {
			errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
				"composition.%s.min must be a non-negative integer", name))
			bad = true
		}
		rule := CompositionRule{Name: name, RecordTypeID: rtid, Min: min}
		if rawMax, present := entry["max"]; present {
			max, okMax := asInt(rawMax)
			if !okMax || (okMin && max < min) {
				errs.Add(apperr.New(apperr.CodeCompositionSchemaInvalid, file,
					"composition.%s.max must be an integer >= min", name))
				bad = true
			} else {
				rule.Max = &max
			}
		}
		if bad {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errs
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
