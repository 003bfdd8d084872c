// Package formdef loads declarative form definitions from JSON or YAML files
// and compiles them into a schema tree plus provider registry.
//
// A definition file holds one or more forms keyed by id:
//
//	forms:
//	  row-filter:
//	    title: Row filter
//	    sections:
//	      - name: model
//	        fields:
//	          - name: mode
//	          - name: rules
//	            kind: array
//	            fields:
//	              - name: enabled
//	                type: boolean
//	      - name: view
//	        jsonschema: view.schema.json
//	      - name: options
//	        openapi:
//	          document: filter.openapi.yaml
//	          component: FilterOptions
//	    providers:
//	      - kind: constant
//	        target: model.mode
//	        option: status
//	        params:
//	          value: ready
//
// Every file is validated against a JSON Schema reflected from the document
// types before it is decoded.
package formdef
