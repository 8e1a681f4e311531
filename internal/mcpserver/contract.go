package mcpserver

// ObjectFormatContract describes the canonical dataset object format that
// LLM consumers should follow when reading or authoring dataset files.
const ObjectFormatContract = `# Graphdown Object Format Contract

Every Markdown file in a graphdown dataset MUST follow this structure.

## Structure

` + "```" + `markdown
---
typeId: note                        # REQUIRED - names the record type
recordId: one                       # records only; omitted on type objects
fields:                             # REQUIRED - the object's data payload
  id: note-one                      # the declared identifier
  title: First note
---

Body text in standard Markdown.

Use [[wikilinks]] to reference other objects by declared id or by
typeId:recordId identity. Use [[target|alias]] for display text that
differs from the target.
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **Top-level keys are closed.** Only ` + "`" + `typeId` + "`" + `, ` + "`" + `recordId` + "`" + `, and ` + "`" + `fields` + "`" + ` are
   allowed above ` + "`" + `fields` + "`" + `; everything else belongs inside ` + "`" + `fields` + "`" + `.
3. **Identifiers** start with a letter or digit and contain only letters,
   digits, hyphens, and underscores. ` + "`" + `gdblob` + "`" + ` is reserved.
4. **Type objects** live under ` + "`" + `types/` + "`" + `, have no ` + "`" + `recordId` + "`" + `, declare
   ` + "`" + `fields.recordTypeId` + "`" + `, and their ` + "`" + `fields.id` + "`" + ` starts with ` + "`" + `type-` + "`" + `.
5. **Record objects** live under ` + "`" + `records/<recordTypeId>/` + "`" + ` and carry a
   ` + "`" + `recordId` + "`" + ` matching their directory's type.
6. **References** are either inline ` + "`" + `[[wikilinks]]` + "`" + ` in the body or
   ` + "`" + `ref` + "`" + `/` + "`" + `refs` + "`" + ` entries nested anywhere inside ` + "`" + `fields` + "`" + `.
7. **Binary payloads** are referenced with ` + "`" + `gdblob:sha256-<64 hex>` + "`" + ` tokens
   and stored at ` + "`" + `blobs/sha256/<first 2 hex>/<64 hex>` + "`" + `.
8. **Encoding** is UTF-8; line endings are normalized, so LF and CRLF are
   equivalent.

## Example

` + "```" + `markdown
---
typeId: car
recordId: c1
fields:
  id: car-c1
  name: Roadster
  engine:
    ref: engine-e1
---

The [[engine-e1|engine]] was rebuilt in 2024.

Spec sheet: gdblob:sha256-9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
` + "```" + `
`
