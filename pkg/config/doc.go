/*
Package config describes one run and loads optional defaults files.

	            +-------------+
	            |   Config    |
	            |   (a run)   |
	            +------+------+
	                   |  flags win over
	            +------+------+
	            |  Defaults   |
	            |   (file)    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Holds the action, master list, folders, ratio, mode and worker count
- Rejects bad values before any file is touched (ErrInvalid)
- Fills copy folders from the train/val/test splits next to the master list
- Parses defaults files by extension through a parser registry

🔄 Flow:
1. The CLI loads a Defaults file when --config is given
2. Flags that were not set explicitly fall back to the file, then to built-ins
3. Config.Validate normalizes the result
4. The validated Config is passed down unchanged

🔍 Example defaults file (HCL):

	workers    = 8
	mode       = "last"
	extensions = ["jpg", "png"]
	ignore     = ["*_mask.png"]

	delete {
	  ratio = 0.5
	}

	copy {
	  ratio  = 0.2
	  output = "/data/subset"
	}
*/
package config
