package categories

import "errors"

// ErrCategoryNotFound is returned when the referenced category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// ErrDuplicateName is returned when the (user, name) uniqueness invariant
// would be violated.
var ErrDuplicateName = errors.New("category with this name already exists")

// ErrForbidden is returned when a category exists but belongs to another
// user. Unlike notes, category mutation paths distinguish existence from
// ownership.
var ErrForbidden = errors.New("you can only modify your own categories")

// ErrCreateCategory is returned when category creation fails.
var ErrCreateCategory = errors.New("failed to create category")

// ErrUpdateCategory is returned when category update fails.
var ErrUpdateCategory = errors.New("failed to update category")

// ErrDeleteCategory is returned when category deletion fails.
var ErrDeleteCategory = errors.New("failed to delete category")

// ErrListCategories is returned when category listing fails.
var ErrListCategories = errors.New("failed to list categories")

// ErrCreateCategoriesRepo is returned when categories repository creation fails.
var ErrCreateCategoriesRepo = errors.New("failed to create categories repository")
