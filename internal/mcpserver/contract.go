package mcpserver

// ADRFormatContract describes the canonical decision record format that
// LLM consumers should follow when writing records into the corpus.
const ADRFormatContract = `# Ansuz Decision Record Format Contract

Every Markdown decision record in the corpus MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: ADR-0001                        # REQUIRED unless the filename contains it
title: Use Electron for the shell   # REQUIRED
status: Accepted                    # Proposed | Accepted | Deprecated | Superseded
depends-on:                         # OPTIONAL - ids this decision builds on
  - ADR-0002
depended-by:                        # OPTIONAL - declared dependents
  - ADR-0003
impact-scope:                       # OPTIONAL - path-like tags for risk scoring
  - "electron/main"
  - "security/csp"
tech-tags:                          # OPTIONAL - free-text technology tags
  - electron
---

# Use Electron for the shell

Context, decision, and consequences in standard Markdown.
` + "```" + `

## Rules

1. **YAML front-matter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file (no leading blank lines). Records without a block are
   skipped by the analysis with a warning.
2. **The id** follows ` + "`" + `PREFIX-NNNN` + "`" + ` (e.g. ` + "`" + `ADR-0042` + "`" + `). When the front-matter
   has no ` + "`" + `id` + "`" + ` field, it is derived from the filename.
3. **depends-on entries** must reference existing ids; references to unknown
   ids are reported as DANGLING_REFERENCE issues.
4. **Configuration values** mentioned in the body (framework versions,
   security flags, coverage floors) are extracted by linkage rules and
   cross-checked against linked records. Keep them in prose near the
   technology name, e.g. "React 18" or "nodeIntegration: false".
5. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
6. **Encoding** is UTF-8 with a trailing newline.
`
