package menu

// Reference navigation menu of the units library documentation, the menu the
// generated site ships as menudata.js. Every call returns a fresh tree.
func Reference() *Menu {
	return New(
		NewNode("Main Page", "index.html"),
		NewNode("Modules", "modules.html"),
		NewNode("Namespaces", "namespaces.html",
			NewNode("Namespace List", "namespaces.html"),
			NewNode("Namespace Members", "namespacemembers.html",
				NewNode("All", "namespacemembers.html",
					NewNode("a", "namespacemembers.html#index_a"),
					NewNode("b", "namespacemembers.html#index_b"),
					NewNode("c", "namespacemembers.html#index_c"),
					NewNode("d", "namespacemembers.html#index_d"),
					NewNode("e", "namespacemembers.html#index_e"),
					NewNode("f", "namespacemembers.html#index_f"),
					NewNode("g", "namespacemembers.html#index_g"),
					NewNode("h", "namespacemembers.html#index_h"),
					NewNode("i", "namespacemembers.html#index_i"),
					NewNode("k", "namespacemembers.html#index_k"),
					NewNode("l", "namespacemembers.html#index_l"),
					NewNode("m", "namespacemembers.html#index_m"),
					NewNode("n", "namespacemembers.html#index_n"),
					NewNode("o", "namespacemembers.html#index_o"),
					NewNode("p", "namespacemembers.html#index_p"),
					NewNode("r", "namespacemembers.html#index_r"),
					NewNode("s", "namespacemembers.html#index_s"),
					NewNode("t", "namespacemembers.html#index_t"),
					NewNode("u", "namespacemembers.html#index_u"),
					NewNode("v", "namespacemembers.html#index_v"),
					NewNode("z", "namespacemembers.html#index_z"),
				),
				NewNode("Functions", "namespacemembers_func.html",
					NewNode("a", "namespacemembers_func.html#index_a"),
					NewNode("c", "namespacemembers_func.html#index_c"),
					NewNode("e", "namespacemembers_func.html#index_e"),
					NewNode("f", "namespacemembers_func.html#index_f"),
					NewNode("g", "namespacemembers_func.html#index_g"),
					NewNode("h", "namespacemembers_func.html#index_h"),
					NewNode("k", "namespacemembers_func.html#index_k"),
					NewNode("l", "namespacemembers_func.html#index_l"),
					NewNode("m", "namespacemembers_func.html#index_m"),
					NewNode("n", "namespacemembers_func.html#index_n"),
					NewNode("o", "namespacemembers_func.html#index_o"),
					NewNode("p", "namespacemembers_func.html#index_p"),
					NewNode("r", "namespacemembers_func.html#index_r"),
					NewNode("s", "namespacemembers_func.html#index_s"),
					NewNode("t", "namespacemembers_func.html#index_t"),
					NewNode("u", "namespacemembers_func.html#index_u"),
					NewNode("z", "namespacemembers_func.html#index_z"),
				),
				NewNode("Typedefs", "namespacemembers_type.html",
					NewNode("a", "namespacemembers_type.html#index_a"),
					NewNode("b", "namespacemembers_type.html#index_b"),
					NewNode("c", "namespacemembers_type.html#index_c"),
					NewNode("d", "namespacemembers_type.html#index_d"),
					NewNode("e", "namespacemembers_type.html#index_e"),
					NewNode("f", "namespacemembers_type.html#index_f"),
					NewNode("g", "namespacemembers_type.html#index_g"),
					NewNode("h", "namespacemembers_type.html#index_h"),
					NewNode("i", "namespacemembers_type.html#index_i"),
					NewNode("k", "namespacemembers_type.html#index_k"),
					NewNode("l", "namespacemembers_type.html#index_l"),
					NewNode("m", "namespacemembers_type.html#index_m"),
					NewNode("n", "namespacemembers_type.html#index_n"),
					NewNode("p", "namespacemembers_type.html#index_p"),
					NewNode("r", "namespacemembers_type.html#index_r"),
					NewNode("s", "namespacemembers_type.html#index_s"),
					NewNode("t", "namespacemembers_type.html#index_t"),
					NewNode("v", "namespacemembers_type.html#index_v"),
				),
			),
		),
		NewNode("Classes", "annotated.html",
			NewNode("Class List", "annotated.html"),
			NewNode("Class Index", "classes.html"),
			NewNode("Class Hierarchy", "hierarchy.html"),
			NewNode("Class Members", "functions.html",
				NewNode("All", "functions.html",
					NewNode("a", "functions.html#index_a"),
					NewNode("c", "functions.html#index_c"),
					NewNode("l", "functions.html#index_l"),
					NewNode("m", "functions.html#index_m"),
					NewNode("n", "functions.html#index_n"),
					NewNode("o", "functions.html#index_o"),
					NewNode("t", "functions.html#index_t"),
					NewNode("u", "functions.html#index_u"),
					NewNode("v", "functions.html#index_v"),
				),
				NewNode("Functions", "functions_func.html"),
				NewNode("Variables", "functions_vars.html"),
				NewNode("Typedefs", "functions_type.html"),
			),
		),
		NewNode("Files", "files.html",
			NewNode("File List", "files.html"),
			NewNode("File Members", "globals.html",
				NewNode("All", "globals.html"),
				NewNode("Macros", "globals_defs.html"),
			),
		),
	)
}
