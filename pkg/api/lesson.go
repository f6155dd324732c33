package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"courseadmin/pkg/ident"
	"courseadmin/pkg/lesson"
)

func lessonPath(id ident.ID) string {
	return "/lesson/" + url.PathEscape(id.String())
}

func (c *Client) CourseSummary(ctx context.Context, courseID ident.ID) (lesson.Summary, error) {
	var s lesson.Summary
	if err := c.do(ctx, c.protected, http.MethodGet, coursePath(courseID)+"/summary", nil, &s); err != nil {
		return lesson.Summary{}, fmt.Errorf("course summary %s: %w", courseID, err)
	}
	return s, nil
}

func (c *Client) ListLessons(ctx context.Context, courseID ident.ID) ([]lesson.Lesson, error) {
	var lessons []lesson.Lesson
	if err := c.do(ctx, c.protected, http.MethodGet, "/lesson/course/"+url.PathEscape(courseID.String()), nil, &lessons); err != nil {
		return nil, fmt.Errorf("list lessons of %s: %w", courseID, err)
	}
	return lessons, nil
}

func (c *Client) CreateLesson(ctx context.Context, courseID ident.ID, title string) error {
	body := struct {
		CourseID ident.ID `json:"courseId"`
		Title    string   `json:"title"`
	}{CourseID: courseID, Title: title}

	if err := c.do(ctx, c.protected, http.MethodPost, "/lesson", body, nil); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (c *Client) UpdateLesson(ctx context.Context, id ident.ID, title string) error {
	body := struct {
		ID    ident.ID `json:"id"`
		Title string   `json:"title"`
	}{ID: id, Title: title}

	if err := c.do(ctx, c.protected, http.MethodPut, lessonPath(id), body, nil); err != nil {
		return fmt.Errorf("update lesson %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteLesson(ctx context.Context, id ident.ID) error {
	if err := c.do(ctx, c.protected, http.MethodDelete, lessonPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete lesson %s: %w", id, err)
	}
	return nil
}

func (c *Client) ReorderLesson(ctx context.Context, courseID, lessonID ident.ID, newOrder int) error {
	body := struct {
		LessonID ident.ID `json:"lessonId"`
		NewOrder int      `json:"newOrder"`
	}{LessonID: lessonID, NewOrder: newOrder}

	if err := c.do(ctx, c.protected, http.MethodPatch, "/lesson/"+url.PathEscape(courseID.String())+"/reorder", body, nil); err != nil {
		return fmt.Errorf("reorder lesson %s: %w", lessonID, err)
	}
	return nil
}
