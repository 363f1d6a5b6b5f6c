// SPDX-License-Identifier: MPL-2.0

// Package sourcetree stores a FlowSet as one file per group below a
// destination folder:
//
//	src/
//	  tabs/<tab>.yaml
//	  subflows/<subflow>.yaml
//	  config-nodes/<config>.yaml
//
// Files of a kind directory are read back in lexical file-name order, which is
// the storage order of the groups. The page order of the flow file is tracked
// separately in the splitter config.
package sourcetree
