// Package validate implements the whole-snapshot validation engine:
// directory layout, per-file parsing, type schema, identity uniqueness,
// composition multiplicity, and content-addressed blob integrity. All
// checks past the directory gate accumulate errors rather than stopping at
// the first failure.
package validate

import (
	"sort"
	"strings"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/blob"
	"github.com/johnbenac/graphdown/internal/graph"
	"github.com/johnbenac/graphdown/internal/object"
	"github.com/johnbenac/graphdown/internal/refs"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

const (
	typesDir    = "types/"
	recordsDir  = "records/"
	datasetsDir = "datasets/"

	// typeIDPrefix is the naming convention for the declared id of a type
	// object.
	typeIDPrefix = "type-"
)

// Result is the outcome of one validation run.
type Result struct {
	Errors apperr.List `json:"errors,omitempty"`
}

// OK reports whether the snapshot validated cleanly.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Snapshot validates the whole snapshot and returns every applicable
// error. Only the required-directory gate short-circuits.
func Snapshot(snap snapshot.Snapshot) Result {
	var errs apperr.List

	// 1. Required directories. Nothing else is checkable without them.
	for _, dir := range []string{typesDir, recordsDir} {
		if !snap.HasDir(dir) {
			errs.Add(apperr.New(apperr.CodeDirMissing, "", "required directory %s is missing", dir))
		}
	}
	if len(errs) > 0 {
		return Result{Errors: errs}
	}

	// 2. Per-file parse of every object file, collecting errors.
	parsed := make(map[string]object.Object)
	var objectPaths []string
	for _, path := range snap.Paths() {
		if !strings.HasSuffix(path, ".md") {
			continue
		}
		if !strings.HasPrefix(path, typesDir) &&
			!strings.HasPrefix(path, recordsDir) &&
			!strings.HasPrefix(path, datasetsDir) {
			continue
		}
		obj := object.ClassifyFile(path, snap[path])
		if obj.Kind == object.KindInvalid {
			errs.Add(obj.Err)
			continue
		}
		if obj.Kind == object.KindIgnored {
			continue
		}
		parsed[path] = obj
		objectPaths = append(objectPaths, path)
	}

	// 3. Type-level checks and record-type registry.
	types := checkTypes(parsed, objectPaths, &errs)

	// 4. Composition referential integrity.
	checkCompositionTypes(types, &errs)

	// 5. Record directory layout, typeId consistency, required fields.
	checkRecordDirs(snap, parsed, types, &errs)

	// 6. Global declared-id uniqueness.
	checkDuplicateIDs(parsed, objectPaths, &errs)

	// 7. Composition multiplicity over extracted links.
	checkComposition(parsed, objectPaths, types, &errs)

	// 8. Content-addressed blob integrity.
	checkBlobs(snap, parsed, objectPaths, &errs)

	return Result{Errors: errs}
}

// typeInfo is one registered record type with its declaring object. The
// schema itself is parsed by the graph package; validation consumes it.
type typeInfo struct {
	def *graph.TypeDef
	obj object.Object
}

func checkTypes(parsed map[string]object.Object, paths []string, errs *apperr.List) map[string]typeInfo {
	types := make(map[string]typeInfo)
	for _, path := range paths {
		obj := parsed[path]
		if !strings.HasPrefix(path, typesDir) || obj.Kind != object.KindType {
			continue
		}

		if id := obj.DeclaredID(); id != "" && !strings.HasPrefix(id, typeIDPrefix) {
			errs.Add(apperr.New(apperr.CodeInvalidIdentifier, path,
				"type object id %q does not follow the naming convention", id).
				WithHint("type object ids carry the type- prefix"))
		}

		def, defErrs := graph.ParseTypeDef(obj)
		errs.Add(defErrs...)
		if def == nil {
			continue
		}
		if prev, dup := types[def.RecordTypeID]; dup {
			errs.Add(apperr.New(apperr.CodeDuplicateRecordTypeID, path,
				"recordTypeId %q already declared by %s", def.RecordTypeID, prev.obj.File))
			continue
		}
		types[def.RecordTypeID] = typeInfo{def: def, obj: obj}
	}
	return types
}

func checkCompositionTypes(types map[string]typeInfo, errs *apperr.List) {
	for _, rtid := range sortedTypeIDs(types) {
		info := types[rtid]
		for _, rule := range info.def.Composition {
			if _, known := types[rule.RecordTypeID]; !known {
				errs.Add(apperr.New(apperr.CodeCompositionUnknownType, info.obj.File,
					"composition.%s references unknown type %q", rule.Name, rule.RecordTypeID))
			}
		}
	}
}

func checkRecordDirs(snap snapshot.Snapshot, parsed map[string]object.Object, types map[string]typeInfo, errs *apperr.List) {
	reportedDirs := make(map[string]bool)
	for _, path := range snap.Paths() {
		if !strings.HasPrefix(path, recordsDir) || !strings.HasSuffix(path, ".md") {
			continue
		}
		rel := path[len(recordsDir):]
		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			errs.Add(apperr.New(apperr.CodeUnknownRecordDir, path,
				"record files must live under records/<recordTypeId>/").
				WithHint("move the file into the directory named after its type"))
			continue
		}
		dir := rel[:slash]
		owner, known := types[dir]
		if !known {
			if !reportedDirs[dir] {
				reportedDirs[dir] = true
				errs.Add(apperr.New(apperr.CodeUnknownRecordDir, path,
					"records/%s/ has no matching type definition", dir))
			}
			continue
		}

		obj, ok := parsed[path]
		if !ok {
			continue // parse failure already reported
		}
		if obj.TypeID != dir {
			errs.Add(apperr.New(apperr.CodeTypeIDMismatch, path,
				"declared typeId %q does not match directory %q", obj.TypeID, dir))
		}
		if obj.Kind == object.KindRecord {
			checkRequiredFields(obj, owner.def, errs)
		}
	}
}

func checkRequiredFields(obj object.Object, def *graph.TypeDef, errs *apperr.List) {
	names := make([]string, 0, len(def.FieldDefs))
	for name, fd := range def.FieldDefs {
		if fd.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if isEmptyField(obj.Fields[name]) {
			errs.Add(apperr.New(apperr.CodeRequiredFieldMissing, obj.File,
				"required field %q is missing or empty", name))
		}
	}
}

func isEmptyField(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func checkDuplicateIDs(parsed map[string]object.Object, paths []string, errs *apperr.List) {
	firstByID := make(map[string]string)
	for _, path := range paths {
		id := parsed[path].DeclaredID()
		if id == "" {
			continue
		}
		if first, dup := firstByID[id]; dup {
			errs.Add(apperr.New(apperr.CodeDuplicateID, path,
				"id %q already declared by %s", id, first))
			continue
		}
		firstByID[id] = path
	}
}

func checkComposition(parsed map[string]object.Object, paths []string, types map[string]typeInfo, errs *apperr.List) {
	// Targets resolve against declared ids first, then classifier
	// identities, so [[engine:e1]] reaches a record either way.
	byDeclared := make(map[string]object.Object)
	byIdentity := make(map[string]object.Object)
	for _, path := range paths {
		obj := parsed[path]
		if id := obj.DeclaredID(); id != "" {
			if _, taken := byDeclared[id]; !taken {
				byDeclared[id] = obj
			}
		}
		if _, taken := byIdentity[obj.Identity()]; !taken {
			byIdentity[obj.Identity()] = obj
		}
	}

	for _, path := range paths {
		obj := parsed[path]
		if obj.Kind != object.KindRecord || !strings.HasPrefix(path, recordsDir) {
			continue
		}
		owner, ok := types[obj.TypeID]
		if !ok || len(owner.def.Composition) == 0 {
			continue
		}

		resolved := make(map[string]object.Object)
		for _, target := range refs.Extract(obj.Fields, obj.Body, obj.DeclaredID(), obj.Identity()) {
			tObj, found := byDeclared[target]
			if !found {
				tObj, found = byIdentity[target]
			}
			if found && tObj.Identity() != obj.Identity() {
				resolved[tObj.Identity()] = tObj
			}
		}

		for _, rule := range owner.def.Composition {
			count := 0
			for _, tObj := range resolved {
				if tObj.Kind == object.KindRecord && tObj.TypeID == rule.RecordTypeID {
					count++
				}
			}
			if count < rule.Min {
				errs.Add(apperr.New(apperr.CodeCompositionConstraintViolation, path,
					"component %q requires at least %d %s link(s), found %d",
					rule.Name, rule.Min, rule.RecordTypeID, count))
			} else if rule.Max != nil && count > *rule.Max {
				errs.Add(apperr.New(apperr.CodeCompositionConstraintViolation, path,
					"component %q allows at most %d %s link(s), found %d",
					rule.Name, *rule.Max, rule.RecordTypeID, count))
			}
		}
	}
}

func checkBlobs(snap snapshot.Snapshot, parsed map[string]object.Object, paths []string, errs *apperr.List) {
	for _, path := range snap.Paths() {
		if !strings.HasPrefix(path, blob.PathPrefix) {
			continue
		}
		digest, ok := blob.ParsePath(path)
		if !ok {
			errs.Add(apperr.New(apperr.CodeBlobPathInvalid, path,
				"blob path does not match %s<2-hex>/<64-hex>", blob.PathPrefix))
			continue
		}
		if actual := blob.Digest(snap[path]); actual != digest {
			errs.Add(apperr.New(apperr.CodeBlobDigestMismatch, path,
				"blob content hashes to %s, path claims %s", actual, digest))
		}
	}

	for _, path := range paths {
		obj := parsed[path]
		for _, digest := range refs.ExtractBlobs(obj.Fields, obj.Body) {
			if !snap.Has(blob.CanonicalPath(digest)) {
				errs.Add(apperr.New(apperr.CodeBlobReferenceMissing, path,
					"referenced blob %s has no file at %s", digest, blob.CanonicalPath(digest)))
			}
		}
	}
}

func sortedTypeIDs(types map[string]typeInfo) []string {
	out := make([]string, 0, len(types))
	for rtid := range types {
		out = append(out, rtid)
	}
	sort.Strings(out)
	return out
}
