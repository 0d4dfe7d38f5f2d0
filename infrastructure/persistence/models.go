package persistence

const commentTable = "code_comments"

// CommentModel is a row of code_comments. Column names match the table the
// editor plugin has always used, so existing databases open unchanged.
type CommentModel struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	FileName string `gorm:"column:file_name;index:idx_code_comments_file_name"`
	Start    int    `gorm:"column:start"`
	End      int    `gorm:"column:end"`
	Comment  string `gorm:"column:comment"`
}

// TableName returns the table name.
func (CommentModel) TableName() string { return commentTable }
