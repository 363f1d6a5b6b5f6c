// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	SettingsLoadFailedId Id = iota + 1
	ProjectNotFoundId
	FlowFileUnreadableId
	SourceTreeEmptyId
	TransformConfigInvalidId
	TransformConfigMissingId
	ReloadFailedId
	PermissionDeniedId
	WatcherExhaustedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // lookup key
	mdMsg    MarkdownMsg // rendered with glamour
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	nodeRedProjectsDoc HttpLink = "https://nodered.org/docs/user-guide/projects/"
	nodeRedAdminAPIDoc HttpLink = "https://nodered.org/docs/api/admin/methods/post/flows/"

	settingsLoadFailedIssue = &Issue{
		id: SettingsLoadFailedId,
		mdMsg: `
# Failed to load settings!

The settings file could not be read or does not match the expected schema.

## Things you can try:
- Print the settings location:
~~~
$ flow-splitter config path
~~~
- Compare with the defaults:
~~~
$ flow-splitter config show
~~~
- Check environment variables starting with ` + "`FLOW_SPLITTER_`" + ` and your ` + "`.env`" + ` file`,
	}

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# No Node-RED project found!

Projects are enabled, but no active project could be determined from the user directory.

## Where we looked:
1. ` + "`<userDir>/.config.projects.json`" + ` (` + "`activeProject`" + `)
2. ` + "`<userDir>/.config.json`" + ` (` + "`projects.activeProject`" + `)

## Things you can try:
- Open the project once in the Node-RED editor so it is recorded as active
- Point ` + "`--user-dir`" + ` at the right Node-RED user directory
- Disable project mode with ` + "`--projects=false`",
		docLinks: []HttpLink{nodeRedProjectsDoc},
	}

	flowFileUnreadableIssue = &Issue{
		id: FlowFileUnreadableId,
		mdMsg: `
# Flow file could not be read!

The flow file must contain a JSON array of nodes, as written by Node-RED.

## Things you can try:
- Validate the file with a JSON linter
- Check ` + "`node-red.settings.flowFile`" + ` in the project's ` + "`package.json`" + `
- Restore the flows from the source tree:
~~~
$ flow-splitter rebuild
~~~`,
	}

	sourceTreeEmptyIssue = &Issue{
		id: SourceTreeEmptyId,
		mdMsg: `
# Nothing to rebuild!

The source tree has no tab, subflow or config-node files, so the flow file cannot be reconstructed.

## Things you can try:
- Check ` + "`destinationFolder`" + ` and ` + "`fileFormat`" + ` in ` + "`.config.flow-splitter.json`" + `
- Split an existing flow file first:
~~~
$ flow-splitter split
~~~`,
	}

	transformConfigInvalidIssue = &Issue{
		id: TransformConfigInvalidId,
		mdMsg: `
# Invalid splitter config!

` + "`.config.flow-splitter.json`" + ` does not match the expected shape:

~~~json
{
  "fileFormat": "yaml",
  "destinationFolder": "src",
  "tabsOrder": []
}
~~~

## Things you can try:
- Use ` + "`json`" + ` or ` + "`yaml`" + ` as ` + "`fileFormat`" + `
- Keep ` + "`destinationFolder`" + ` relative to the project
- Delete the file; the next split recreates it`,
	}

	transformConfigMissingIssue = &Issue{
		id: TransformConfigMissingId,
		mdMsg: `
# No splitter config!

The project has never been split, and rebuilding without ` + "`.config.flow-splitter.json`" + ` is disabled (` + "`require_config`" + `).

## Things you can try:
- Split the current flow file:
~~~
$ flow-splitter split
~~~
- Set ` + "`require_config: false`" + ` to rebuild from the default source folder`,
	}

	reloadFailedIssue = &Issue{
		id: ReloadFailedId,
		mdMsg: `
# Node-RED did not reload the flows!

The flow file was written, but the admin API rejected the reload request.

## Things you can try:
- Check ` + "`admin.url`" + ` and that Node-RED is running
- Provide an admin token with ` + "`FLOW_SPLITTER_ADMIN_TOKEN`" + ` when adminAuth is enabled
- Restart Node-RED to pick up the rebuilt flow file`,
		docLinks: []HttpLink{nodeRedAdminAPIDoc},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The flow file, the source tree or the splitter config could not be written.

## Things you can try:
- Check the ownership of the project directory
- Run flow-splitter as the user running Node-RED`,
	}

	watcherExhaustedIssue = &Issue{
		id: WatcherExhaustedId,
		mdMsg: `
# The watcher ran out of OS resources!

The operating system refused to watch more directories below the Node-RED user directory.

## Things you can try:
- On Linux, raise the inotify limit: ` + "`sysctl fs.inotify.max_user_watches=524288`" + `
- Move large folders such as installed nodes out of the watched directory
- Run ` + "`flow-splitter split`" + ` and ` + "`flow-splitter rebuild`" + ` by hand instead of watching`,
	}

	issues = map[Id]*Issue{
		settingsLoadFailedIssue.Id():     settingsLoadFailedIssue,
		projectNotFoundIssue.Id():        projectNotFoundIssue,
		flowFileUnreadableIssue.Id():     flowFileUnreadableIssue,
		sourceTreeEmptyIssue.Id():        sourceTreeEmptyIssue,
		transformConfigInvalidIssue.Id(): transformConfigInvalidIssue,
		transformConfigMissingIssue.Id(): transformConfigMissingIssue,
		reloadFailedIssue.Id():           reloadFailedIssue,
		permissionDeniedIssue.Id():       permissionDeniedIssue,
		watcherExhaustedIssue.Id():       watcherExhaustedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
