package mcpserver

// RevisionFormatContract describes how revisions, branches and merges
// work, for LLM consumers committing through the MCP tools.
const RevisionFormatContract = `# Content OS Revision Contract

Content OS stores every project as an append-only line of revisions.

## Model

- A **project** lives at ` + "`" + `<folder>/<project_id>/` + "`" + ` and has one mutable
  ` + "`" + `meta.json` + "`" + ` plus immutable revision files.
- Revisions are **never edited or deleted**. Every change is a new commit.
- The **main** branch is the published line. Only the project owner
  writes to it directly.
- Everyone else (including this agent) commits to a **personal branch**
  named after their identity. The owner reviews and merges.

## Committing

1. Read the project first (` + "`" + `read_project` + "`" + `) and base your edit on the
   HEAD content.
2. Commit the **full new content**, not a patch. Content OS snapshots
   whole revisions.
3. Write a one-line commit message saying what changed and why.
4. Do not commit unchanged content.

## Merging

Merges are owner-only and copy one branch revision onto main as a new
commit with a ` + "`" + `Merged from branch <name>: <message>` + "`" + ` provenance line.
There is no three-way merge: the merged snapshot supersedes main.

## Status

Each revision carries a lifecycle status, one of:
Idea, Draft, Review, Approval, Publication, Archival.
Agent commits keep the project's current status unless told otherwise.
`
